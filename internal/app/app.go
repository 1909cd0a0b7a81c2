package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BlogEngine/internal/config"
	"BlogEngine/internal/domain"
	"BlogEngine/internal/generator"
	"BlogEngine/internal/infrastructure/images"
	"BlogEngine/internal/infrastructure/llm"
	"BlogEngine/internal/infrastructure/sanity"
	"BlogEngine/internal/infrastructure/scheduler"
	"BlogEngine/internal/infrastructure/storage"
	"BlogEngine/internal/infrastructure/telegram"
	"BlogEngine/internal/infrastructure/trends"
	"BlogEngine/internal/keys"
	"BlogEngine/internal/linker"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/runstate"
	"BlogEngine/internal/server"
	"BlogEngine/internal/sources"
	"BlogEngine/internal/trending"
	"BlogEngine/internal/usecase"
)

const (
	sourceTimeout   = 45 * time.Second
	shutdownTimeout = 15 * time.Second
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	runner     *usecase.Runner
	scheduler  *usecase.Scheduler
	server     *server.Server
	closeStore func() error
	// cancels background jobs started over HTTP
	jobCancel context.CancelFunc
	jobCtx    context.Context
	startup   sync.WaitGroup
}

// New builds the application graph. Nothing runs until Run is called.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, closeStore, err := openStore(ctx, cfg.Store, baseLogger.With("component", "store"))
	if err != nil {
		return nil, err
	}

	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("llm: %w", err)
	}
	gen := generator.New(completer, baseLogger.With("component", "generator"), generator.WithKeys(keys.UUID{}))

	tokenizer := trending.NewTokenizer(cfg.Dedup.MinWordLength, cfg.Dedup.PreserveWords)
	registry := newTrendSources(cfg.Sources, baseLogger)

	unsplash := images.NewUnsplash(images.Options{
		AccessKey: cfg.Unsplash.AccessKey,
		AppName:   cfg.Unsplash.AppName,
	}, baseLogger.With("component", "unsplash"))

	assembler := usecase.NewAssembler(usecase.AssemblerDeps{
		Generator: gen,
		Images:    unsplash,
		Related:   linker.NewFinder(store, tokenizer, baseLogger.With("component", "linker")),
		Keys:      keys.UUID{},
		Logger:    baseLogger.With("component", "assembler"),
	})

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources: sources.NewMultiSource(registry, sourceTimeout, baseLogger.With("component", "sources")),
		Aggregator: &trending.Aggregator{
			Keywords:     cfg.Generation.Keywords,
			MinRelevance: cfg.Generation.MinRelevanceScore,
			Tokenizer:    tokenizer,
			Threshold:    cfg.Dedup.Threshold,
		},
		Store:      store,
		Assembler:  assembler,
		Notifier:   notifier,
		BatchSize:  cfg.Generation.ArticlesToGenerate,
		RecentDays: cfg.Generation.RecentDays,
		TopicDelay: cfg.Generation.TopicDelay,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	mig := cfg.Migration
	sweepLogger := baseLogger.With("component", "migration")
	jobs := []usecase.Job{
		usecase.NewSweep(store, usecase.NewGEOEnricher(gen), usecase.SweepOptions{
			MaxRecords:   mig.GEO.MaxRecords,
			SummaryChars: mig.GEO.SummaryChars,
			RecordDelay:  mig.RecordDelay,
			DryRun:       mig.DryRun,
		}, sweepLogger),
		usecase.NewSweep(store, usecase.NewReferencesEnricher(gen), usecase.SweepOptions{
			MaxRecords:   mig.References.MaxRecords,
			SummaryChars: mig.References.SummaryChars,
			RecordDelay:  mig.RecordDelay,
			DryRun:       mig.DryRun,
		}, sweepLogger),
		usecase.NewReferenceTypeMigration(store, mig.DryRun, sweepLogger),
		usecase.NewSweep(store, usecase.NewFeaturedProductsEnricher(keys.UUID{}), usecase.SweepOptions{
			MaxRecords: mig.ProductsBatch,
			DryRun:     mig.DryRun,
		}, sweepLogger),
		usecase.NewSweep(store, usecase.NewBlogPostGEOEnricher(gen), usecase.SweepOptions{
			MaxRecords:   mig.BlogPosts.MaxRecords,
			SummaryChars: mig.BlogPosts.SummaryChars,
			RecordDelay:  mig.RecordDelay,
			DryRun:       mig.DryRun,
		}, sweepLogger),
	}
	var after []string
	if mig.RunAfterGeneration {
		after = []string{domain.JobGEOMigration, domain.JobReferencesBackfill}
	}

	status := runstate.New()
	runner := usecase.NewRunner(usecase.RunnerDeps{
		Status:          status,
		Pipeline:        pipeline,
		Jobs:            jobs,
		AfterGeneration: after,
		Logger:          baseLogger.With("component", "runner"),
	})

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		runner:     runner,
		closeStore: closeStore,
	}
	a.jobCtx, a.jobCancel = context.WithCancel(context.WithoutCancel(ctx))

	if cfg.Scheduler.Enabled {
		if err := scheduler.Validate(cfg.Scheduler.CronExpression); err != nil {
			_ = closeStore()
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), baseLogger.With("component", "cron"))
		a.scheduler = usecase.NewScheduler(driver, runner, baseLogger.With("component", "scheduler"))
	}

	a.server = server.New(server.Deps{
		Jobs:       runner,
		Status:     status,
		APISecret:  cfg.Server.APISecret,
		Logger:     baseLogger.With("component", "http"),
		JobContext: a.jobCtx,
	})
	return a, nil
}

// Runner exposes the job runner for one-shot commands.
func (a *Application) Runner() *usecase.Runner { return a.runner }

// Run starts background work and the HTTP server, then blocks until ctx is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Migration.RenameReferenceTypes {
		a.runStartupJob(ctx, domain.JobReferenceTypes)
	}
	if a.cfg.Migration.RunOnStartup {
		a.startup.Add(1)
		go func() {
			defer a.startup.Done()
			a.runStartupJob(a.jobCtx, domain.JobGEOMigration)
			a.runStartupJob(a.jobCtx, domain.JobReferencesBackfill)
			if a.cfg.Migration.MigrateBlogPosts {
				a.runStartupJob(a.jobCtx, domain.JobFeaturedProducts)
				a.runStartupJob(a.jobCtx, domain.JobBlogPostGEO)
			}
		}()
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(a.jobCtx); err != nil {
			return errors.Join(fmt.Errorf("start scheduler: %w", err), a.shutdown())
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Listen(a.cfg.Server.Port)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	return errors.Join(runErr, a.shutdown())
}

// runStartupJob runs a sweep synchronously; a busy slot skips it.
func (a *Application) runStartupJob(ctx context.Context, name string) {
	res, err := a.runner.RunJob(ctx, name)
	if err != nil {
		a.logger.Warn("startup job skipped", "job", name, "error", err)
		return
	}
	a.logger.Info("startup job finished", "job", name, "processed", res.Processed, "updated", res.Updated, "errors", res.Errors)
}

func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Close cancels background jobs, waits for them and releases the store.
func (a *Application) Close() error {
	a.jobCancel()
	a.startup.Wait()
	a.runner.Wait()
	if err := a.closeStore(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// newTrendSources registers every platform. Sources without credentials
// stay registered and report themselves disabled.
func newTrendSources(cfg config.SourcesConfig, logger *slog.Logger) *sources.Registry {
	registry := sources.NewRegistry()
	registry.Register(trends.NewTikTok(trends.TikTokOptions{
		ClientKey:    cfg.TikTok.ClientKey,
		ClientSecret: cfg.TikTok.ClientSecret,
	}, logger.With("component", "source.tiktok")))
	registry.Register(trends.NewYouTube(trends.YouTubeOptions{
		APIKey:     cfg.YouTube.APIKey,
		RegionCode: cfg.YouTube.RegionCode,
	}, logger.With("component", "source.youtube")))
	registry.Register(trends.NewInstagram(cfg.Instagram.AccessToken, nil))
	return registry
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (ports.ContentStore, func() error, error) {
	switch cfg.Driver {
	case config.StoreBadger:
		s, err := storage.OpenBadger(cfg.BadgerPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StorePostgres:
		s, err := storage.OpenPostgres(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreSanity:
		client := sanity.NewClient(sanity.Options{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			Token:      cfg.Sanity.Token,
			APIVersion: cfg.Sanity.APIVersion,
		})
		return sanity.NewStore(client, keys.UUID{}, logger), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
