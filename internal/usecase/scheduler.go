package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

// Scheduler wires the cron driver with the job runner.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring generation.
func NewScheduler(driver ports.Scheduler, runner *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers the generation run with the provided scheduler. A tick that
// finds the slot busy is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.runner.Generate(ctx)
		if errors.Is(err, domain.ErrBusy) {
			s.logger.Info("scheduled run skipped, job already running", "trigger", trigger)
			return
		}
		s.logger.Info("scheduled run done", "trigger", trigger, "success", summary.Success, "saved", summary.ArticlesSaved)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
