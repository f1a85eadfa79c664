package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/email"
	"github.com/cityhelper/cityhelper/internal/store"
)

const (
	sessionCookieName = "cityhelper_session"
	maxCodeAttempts   = 5
)

type AuthHandler struct {
	users      *store.UserStore
	sessions   *store.SessionStore
	magicLinks *store.MagicLinkStore
	settings   *store.SettingsStore
	mailer     *email.Client
	secure     bool
	logger     *slog.Logger
}

func NewAuthHandler(
	users *store.UserStore,
	sessions *store.SessionStore,
	magicLinks *store.MagicLinkStore,
	settings *store.SettingsStore,
	mailer *email.Client,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		magicLinks: magicLinks,
		settings:   settings,
		mailer:     mailer,
		secure:     secureCookies,
		logger:     logger,
	}
}

type requestCodeRequest struct {
	Email string `json:"email"`
}

// RequestCode handles POST /api/auth/request-code
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(addr); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	ml, err := h.magicLinks.Create(addr, "login")
	if err != nil {
		h.logger.Error("create sign-in code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create sign-in code")
		return
	}

	if err := h.mailer.SendSignInCode(addr, ml.Code); err != nil {
		h.logger.Error("send sign-in code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send sign-in code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

// Verify handles POST /api/auth/verify. A valid code signs the user in,
// creating the account on first use.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if addr == "" || code == "" {
		writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	ml, err := h.magicLinks.GetByEmailAndCode(addr, code)
	if err != nil {
		h.logger.Error("verify sign-in code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}
	if ml == nil {
		if _, err := h.magicLinks.IncrementAttempts(addr); err != nil {
			h.logger.Error("count failed attempt", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}
	if ml.Attempts >= maxCodeAttempts {
		writeError(w, http.StatusUnauthorized, "too many attempts, request a new code")
		return
	}

	if err := h.magicLinks.MarkUsed(ml.ID); err != nil {
		h.logger.Error("mark code used", "error", err)
	}

	user, err := h.users.GetByEmail(addr)
	if err != nil {
		h.logger.Error("look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	firstSignIn := user == nil
	if firstSignIn {
		user, err = h.users.Create(addr, strings.TrimSpace(req.Name))
		if err != nil {
			h.logger.Error("create user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to sign in")
			return
		}
	}

	if err := h.settings.Ensure(user.ID); err != nil {
		h.logger.Error("ensure settings row", "error", err)
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	if firstSignIn {
		if err := h.mailer.SendWelcome(user.Email, user.Name); err != nil {
			h.logger.Warn("send welcome email", "error", err)
		} else if err := h.settings.MarkWelcomed(user.ID, time.Now().UTC()); err != nil {
			h.logger.Warn("mark welcomed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": sess.Token,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	user, err := h.users.GetByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
