package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/push"
	"github.com/cityhelper/cityhelper/internal/store"
)

type PushHandler struct {
	settings *store.SettingsStore
	service  *push.Service
	logger   *slog.Logger
}

func NewPushHandler(settings *store.SettingsStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{settings: settings, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	if err := h.settings.SetPushSubscription(userID, req.Endpoint, req.P256dh, req.Auth); err != nil {
		h.logger.Error("save push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

// Unsubscribe handles DELETE /api/push/subscribe
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.settings.SetPushEnabled(userID, false); err != nil {
		h.logger.Error("disable push", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// TestNotification handles POST /api/push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	settings, err := h.settings.Get(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if settings == nil || !settings.HasSubscription() {
		writeError(w, http.StatusBadRequest, "no push subscription on file")
		return
	}

	payload := push.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working!",
		URL:   "/settings",
		Tag:   "test",
	}
	sub := push.Subscription{
		Endpoint: settings.PushEndpoint,
		P256dh:   settings.PushP256dh,
		Auth:     settings.PushAuth,
	}

	if err := h.service.Send(sub, payload); err != nil {
		h.logger.Error("test push send", "error", err)
		writeError(w, http.StatusBadGateway, "failed to deliver test push")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": 1})
}
