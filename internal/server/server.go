package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cityhelper/cityhelper/internal/billing"
	"github.com/cityhelper/cityhelper/internal/config"
	"github.com/cityhelper/cityhelper/internal/email"
	"github.com/cityhelper/cityhelper/internal/handler"
	"github.com/cityhelper/cityhelper/internal/middleware"
	"github.com/cityhelper/cityhelper/internal/push"
	"github.com/cityhelper/cityhelper/internal/reminder"
	"github.com/cityhelper/cityhelper/internal/scan"
	"github.com/cityhelper/cityhelper/internal/sms"
	"github.com/cityhelper/cityhelper/internal/store"
	"github.com/cityhelper/cityhelper/internal/vault"
	ws "github.com/cityhelper/cityhelper/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH         *handler.AuthHandler
	itemH         *handler.ItemHandler
	notificationH *handler.NotificationHandler
	settingsH     *handler.SettingsHandler
	phoneH        *handler.PhoneHandler
	documentH     *handler.DocumentHandler
	billingH      *handler.BillingHandler
	reminderH     *handler.ReminderHandler
	pushH         *handler.PushHandler

	sessionStore   *store.SessionStore
	settingsStore  *store.SettingsStore
	magicLinkStore *store.MagicLinkStore
	rateLimiter    *middleware.RateLimiter

	runner *reminder.Runner
	logger *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	fieldCipher, err := vault.NewCipher(cfg.FieldPassphrase)
	if err != nil {
		return nil, fmt.Errorf("init field cipher: %w", err)
	}

	itemStore := store.NewItemStore(db, fieldCipher)
	settingsStore := store.NewSettingsStore(db)
	notificationStore := store.NewNotificationStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	verificationStore := store.NewVerificationStore(db)
	documentStore := store.NewDocumentStore(db)
	billingStore := store.NewBillingStore(db)

	mailer := email.NewClient(cfg.ResendAPIKey, cfg.EmailFrom)
	texter := sms.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	scanner := scan.NewClient(cfg.OpenAIAPIKey)
	if cfg.OpenAIModel != "" {
		scanner = scan.NewClient(cfg.OpenAIAPIKey, scan.WithModel(cfg.OpenAIModel))
	}

	vaultMgr := vault.NewManager(vault.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, cfg.VaultPassphrase)

	billingClient := billing.NewClient(billing.Config{
		SecretKey:      cfg.StripeSecretKey,
		WebhookSecret:  cfg.StripeWebhookSecret,
		PremiumPriceID: cfg.StripePremiumPrice,
		SuccessURL:     cfg.StripeSuccessURL,
		CancelURL:      cfg.StripeCancelURL,
	})

	pushLogger := logger.With("component", "push")
	var pushSvc *push.Service
	var sender reminder.Sender
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
		sender = pushSvc
		pushH = handler.NewPushHandler(settingsStore, pushSvc, pushLogger)
	}

	runner := reminder.NewRunner(settingsStore, itemStore, notificationStore, sender, hub, logger.With("component", "reminder"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, magicLinkStore, settingsStore, mailer, cfg.SecureCookies, logger.With("component", "auth")),
		itemH:         handler.NewItemHandler(itemStore, logger.With("component", "item")),
		notificationH: handler.NewNotificationHandler(notificationStore, logger.With("component", "notification")),
		settingsH:     handler.NewSettingsHandler(settingsStore, userStore, logger.With("component", "settings")),
		phoneH:        handler.NewPhoneHandler(verificationStore, settingsStore, texter, logger.With("component", "phone")),
		documentH:     handler.NewDocumentHandler(documentStore, vaultMgr, scanner, logger.With("component", "document")),
		billingH:      handler.NewBillingHandler(billingClient, billingStore, logger.With("component", "billing")),
		reminderH:     handler.NewReminderHandler(runner, cfg.AdminToken, logger.With("component", "reminder")),
		pushH:         pushH,

		sessionStore:   sessionStore,
		settingsStore:  settingsStore,
		magicLinkStore: magicLinkStore,
		rateLimiter:    middleware.NewRateLimiter(),

		runner: runner,
		logger: logger,
	}, nil
}

// Runner returns the reminder runner for scheduling.
func (s *Server) Runner() *reminder.Runner {
	return s.runner
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// NotificationStore returns the notification store for cleanup tasks.
func (s *Server) NotificationStore() *store.NotificationStore {
	return store.NewNotificationStore(s.db)
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/request-code", s.rateLimitedHandler(s.authH.RequestCode))
	outerMux.HandleFunc("POST /api/auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("POST /api/billing/webhook", s.billingH.HandleWebhook)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.settingsStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Compliance item routes
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("PATCH /api/items/{id}/status", s.itemH.SetStatus)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	// Notification routes
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("GET /api/notifications/unread-count", s.notificationH.UnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)

	// Settings routes
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PATCH /api/settings", s.settingsH.Update)

	// Phone verification routes
	mux.HandleFunc("POST /api/phone/send-code", s.phoneH.SendCode)
	mux.HandleFunc("POST /api/phone/verify", s.phoneH.VerifyCode)

	// Document vault routes
	mux.HandleFunc("POST /api/documents", s.documentH.Upload)
	mux.HandleFunc("GET /api/documents", s.documentH.List)
	mux.HandleFunc("GET /api/documents/{id}", s.documentH.Download)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Delete)
	mux.HandleFunc("POST /api/documents/scan", s.documentH.Scan)

	// Billing routes
	mux.HandleFunc("POST /api/billing/checkout", s.billingH.CreateCheckout)
	mux.HandleFunc("GET /api/billing/subscription", s.billingH.GetSubscription)

	// Reminder sweep trigger (operator only, see handler)
	mux.HandleFunc("POST /api/reminders/run", s.reminderH.Run)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}
