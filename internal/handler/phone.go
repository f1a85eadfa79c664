package handler

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/sms"
	"github.com/cityhelper/cityhelper/internal/store"
)

const phoneCodeTTL = 10 * time.Minute

type PhoneHandler struct {
	verifications *store.VerificationStore
	settings      *store.SettingsStore
	texter        *sms.Client
	logger        *slog.Logger
}

func NewPhoneHandler(verifications *store.VerificationStore, settings *store.SettingsStore, texter *sms.Client, logger *slog.Logger) *PhoneHandler {
	return &PhoneHandler{
		verifications: verifications,
		settings:      settings,
		texter:        texter,
		logger:        logger,
	}
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
}

// SendCode handles POST /api/phone/send-code
func (h *PhoneHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if !h.texter.Configured() {
		writeError(w, http.StatusServiceUnavailable, "sms is not configured")
		return
	}

	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	phone, err := sms.NormalizeNumber(req.Phone)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid phone number is required")
		return
	}

	code, err := generateSMSCode()
	if err != nil {
		h.logger.Error("generate verification code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create code")
		return
	}

	if _, err := h.verifications.Replace(userID, phone, code, time.Now().UTC().Add(phoneCodeTTL)); err != nil {
		h.logger.Error("store verification code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create code")
		return
	}

	if err := h.texter.SendVerificationCode(phone, code); err != nil {
		h.logger.Error("send verification sms", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type verifyPhoneRequest struct {
	Code string `json:"code"`
}

// VerifyCode handles POST /api/phone/verify
func (h *PhoneHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req verifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	pending, err := h.verifications.GetByUser(userID)
	if err != nil {
		h.logger.Error("load verification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify")
		return
	}
	if pending == nil || pending.Expired(time.Now().UTC()) || pending.Code != req.Code {
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	if err := h.settings.SetPhone(userID, pending.PhoneNumber, true); err != nil {
		h.logger.Error("save verified phone", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save phone")
		return
	}
	if err := h.verifications.Delete(userID); err != nil {
		h.logger.Error("clear verification", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"phone": pending.PhoneNumber, "status": "verified"})
}

func generateSMSCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
