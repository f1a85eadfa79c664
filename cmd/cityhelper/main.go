package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cityhelper/cityhelper/internal/config"
	"github.com/cityhelper/cityhelper/internal/database"
	"github.com/cityhelper/cityhelper/internal/logging"
	"github.com/cityhelper/cityhelper/internal/reminder"
	"github.com/cityhelper/cityhelper/internal/server"
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

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		logger.Error("init server", "error", err)
		os.Exit(1)
	}

	scheduler := reminder.NewScheduler(srv.Runner(), cfg.ReminderCron, logger.With("component", "scheduler"))
	if err := scheduler.Start(); err != nil {
		logger.Error("start reminder scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Housekeeping: expired sessions and codes, old notifications,
	// stale rate-limit entries.
	cleanup := cron.New()
	cleanup.AddFunc("@hourly", func() {
		if n, err := srv.SessionStore().DeleteExpired(); err != nil {
			logger.Error("cleanup sessions", "error", err)
		} else if n > 0 {
			logger.Info("cleaned up expired sessions", "count", n)
		}
		if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
			logger.Error("cleanup sign-in codes", "error", err)
		} else if n > 0 {
			logger.Info("cleaned up expired sign-in codes", "count", n)
		}
		srv.RateLimiter().Cleanup()
	})
	cleanup.AddFunc("@daily", func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -90)
		if n, err := srv.NotificationStore().DeleteOlderThan(cutoff); err != nil {
			logger.Error("cleanup notifications", "error", err)
		} else if n > 0 {
			logger.Info("cleaned up old notifications", "count", n)
		}
	})
	cleanup.Start()
	defer cleanup.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("cityhelper listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
