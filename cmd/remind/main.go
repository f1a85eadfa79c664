// Command remind runs a single reminder sweep and prints the results as
// JSON. Useful for cron-based deployments and smoke testing.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/cityhelper/cityhelper/internal/config"
	"github.com/cityhelper/cityhelper/internal/database"
	"github.com/cityhelper/cityhelper/internal/logging"
	"github.com/cityhelper/cityhelper/internal/push"
	"github.com/cityhelper/cityhelper/internal/reminder"
	"github.com/cityhelper/cityhelper/internal/store"
	"github.com/cityhelper/cityhelper/internal/vault"
	ws "github.com/cityhelper/cityhelper/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	fieldCipher, err := vault.NewCipher(cfg.FieldPassphrase)
	if err != nil {
		logger.Error("init field cipher", "error", err)
		os.Exit(1)
	}

	var sender reminder.Sender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		sender = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	}

	runner := reminder.NewRunner(
		store.NewSettingsStore(db),
		store.NewItemStore(db, fieldCipher),
		store.NewNotificationStore(db),
		sender,
		ws.NewHub(logger.With("component", "websocket")),
		logger.With("component", "reminder"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	results, err := runner.Run(ctx)
	if err != nil {
		logger.Error("reminder sweep", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}
