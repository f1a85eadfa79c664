package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cityhelper/cityhelper/internal/reminder"
)

type ReminderHandler struct {
	runner     *reminder.Runner
	adminToken string
	logger     *slog.Logger
}

func NewReminderHandler(runner *reminder.Runner, adminToken string, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{runner: runner, adminToken: adminToken, logger: logger}
}

// Run handles POST /api/reminders/run and triggers an immediate sweep over
// every user. The sweep is an operator action, gated on the admin token;
// with no token configured the route is disabled.
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	got := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	results, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "push is not configured")
			return
		}
		h.logger.Error("reminder sweep", "error", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
