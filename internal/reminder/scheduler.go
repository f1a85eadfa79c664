package reminder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler drives recurring reminder sweeps on a cron expression.
type Scheduler struct {
	engine *cron.Cron
	runner *Runner
	spec   string
	logger *slog.Logger
}

// NewScheduler wires a runner to a cron spec (standard 5-field syntax,
// e.g. "0 * * * *" for hourly).
func NewScheduler(runner *Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine: cron.New(),
		runner: runner,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the sweep job and starts the cron engine.
func (s *Scheduler) Start() error {
	_, err := s.engine.AddFunc(s.spec, func() {
		res, err := s.runner.Run(context.Background())
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				s.logger.Debug("sweep skipped", "reason", "push not configured")
				return
			}
			s.logger.Error("reminder sweep failed", "error", err)
			return
		}
		s.logger.Info("reminder sweep complete",
			"users_checked", res.UsersChecked,
			"items_checked", res.ItemsChecked,
			"push_sent", res.PushSent,
			"in_app_written", res.InAppWritten,
		)
	})
	if err != nil {
		return err
	}
	s.engine.Start()
	return nil
}

// Stop halts the cron engine and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.engine.Stop().Done()
}
