package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	users    *store.UserStore
	logger   *slog.Logger
}

func NewSettingsHandler(settings *store.SettingsStore, users *store.UserStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, users: users, logger: logger}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.settings.Ensure(userID); err != nil {
		h.logger.Error("ensure settings row", "error", err)
	}
	settings, err := h.settings.Get(userID)
	if err != nil || settings == nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	PushEnabled *bool   `json:"push_enabled"`
	Name        *string `json:"name"`
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.PushEnabled != nil {
		if err := h.settings.SetPushEnabled(userID, *req.PushEnabled); err != nil {
			h.logger.Error("set push enabled", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update settings")
			return
		}
	}
	if req.Name != nil {
		if err := h.users.UpdateName(userID, *req.Name); err != nil {
			h.logger.Error("update name", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update name")
			return
		}
	}

	settings, err := h.settings.Get(userID)
	if err != nil || settings == nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
