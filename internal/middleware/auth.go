package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/store"
)

const sessionCookieName = "cityhelper_session"

// RequireAuth validates the session and populates AuthContext. The session
// token is read from the session cookie or, for non-browser clients, from a
// "Bearer" Authorization header. Unauthenticated requests get a JSON 401.
func RequireAuth(sessions *store.SessionStore, settings *store.SettingsStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			// Best effort; a failed touch never blocks the request.
			_ = settings.TouchLastActive(sess.UserID, time.Now().UTC())

			annotateUser(r.Context(), sess.UserID)

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				Email:     sess.Email,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
