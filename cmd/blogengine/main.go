package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"BlogEngine/internal/app"
	"BlogEngine/internal/config"
	"BlogEngine/internal/domain"
	"BlogEngine/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewWithOptions(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	// "blogengine <job>" runs a single job and exits instead of serving.
	if len(os.Args) > 1 {
		if err := runOnce(ctx, application, os.Args[1], logger); err != nil {
			logger.Error("job failed", "job", os.Args[1], "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, application *app.Application, name string, logger *slog.Logger) error {
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	runner := application.Runner()
	if name == domain.JobGenerate {
		summary, err := runner.Generate(ctx)
		if err != nil {
			return err
		}
		logger.Info("generation finished", "success", summary.Success, "saved", summary.ArticlesSaved, "duration", summary.Duration)
		if !summary.Success {
			return fmt.Errorf("generation: %s", summary.Error)
		}
		return nil
	}

	res, err := runner.RunJob(ctx, name)
	if err != nil {
		return err
	}
	logger.Info("job finished", "job", name, "processed", res.Processed, "updated", res.Updated, "skipped", res.Skipped, "errors", res.Errors)
	return nil
}
