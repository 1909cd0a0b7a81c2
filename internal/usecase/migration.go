package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/richtext"
)

const (
	defaultMaxRecords   = 5
	defaultSummaryChars = 2000
)

// Job is a unit of work that may hold the run slot.
type Job interface {
	Name() string
	Run(ctx context.Context) domain.MigrationResult
}

// Enricher derives a field-set for one stored record.
type Enricher interface {
	Name() string
	Filter() domain.MissingFilter
	// Enrich returns the patch for rec. An empty patch means nothing usable
	// was produced and the record is skipped.
	Enrich(ctx context.Context, rec domain.StoredArticle, summary string) (domain.Patch, error)
}

// SweepOptions bound a sweep.
type SweepOptions struct {
	MaxRecords   int
	SummaryChars int
	RecordDelay  time.Duration
	DryRun       bool
}

// Sweep backfills a missing field-set across the stored corpus.
type Sweep struct {
	store    ports.ContentStore
	enricher Enricher
	opts     SweepOptions
	now      func() time.Time
	logger   *slog.Logger
}

var _ Job = (*Sweep)(nil)

// NewSweep builds a sweep for one enricher.
func NewSweep(store ports.ContentStore, enricher Enricher, opts SweepOptions, logger *slog.Logger) *Sweep {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = defaultMaxRecords
	}
	if opts.SummaryChars <= 0 {
		opts.SummaryChars = defaultSummaryChars
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweep{store: store, enricher: enricher, opts: opts, now: time.Now, logger: logger}
}

// Name identifies the sweep in status reports.
func (s *Sweep) Name() string { return s.enricher.Name() }

// Run queries records missing the field-set, enriches each one and patches
// only the produced fields back. A second run over a filled corpus finds
// nothing to do.
func (s *Sweep) Run(ctx context.Context) domain.MigrationResult {
	result := domain.MigrationResult{Sweep: s.Name(), DryRun: s.opts.DryRun, Records: []domain.MigrationRecord{}, StartedAt: s.now()}

	records, err := s.store.QueryMissing(ctx, s.enricher.Filter(), s.opts.MaxRecords)
	if err != nil {
		result.Errors++
		result.Error = fmt.Errorf("query records: %w", err).Error()
		s.logger.Error("sweep query failed", "sweep", s.Name(), "error", err)
		result.FinishedAt = s.now()
		return result
	}
	if len(records) == 0 {
		s.logger.Info("sweep found nothing to do", "sweep", s.Name())
		result.FinishedAt = s.now()
		return result
	}
	s.logger.Info("sweep started", "sweep", s.Name(), "records", len(records), "dry_run", s.opts.DryRun)

	for i, rec := range records {
		result.Processed++
		s.process(ctx, rec, &result)

		if i < len(records)-1 {
			if err := sleep(ctx, s.opts.RecordDelay); err != nil {
				result.Error = err.Error()
				break
			}
		}
	}

	s.logger.Info("sweep finished", "sweep", s.Name(),
		"processed", result.Processed, "updated", result.Updated,
		"skipped", result.Skipped, "errors", result.Errors)
	result.FinishedAt = s.now()
	return result
}

func (s *Sweep) process(ctx context.Context, rec domain.StoredArticle, result *domain.MigrationResult) {
	log := s.logger.With("sweep", s.Name(), "title", logging.Title(rec.Title))

	summary := richtext.Summary(rec, s.opts.SummaryChars)
	patch, err := s.enricher.Enrich(ctx, rec, summary)
	if err != nil {
		result.Errors++
		log.Warn("enrichment failed", "error", err)
		return
	}
	if patch.IsEmpty() {
		result.Skipped++
		log.Info("nothing usable generated")
		return
	}

	if !s.opts.DryRun {
		if err := s.store.Patch(ctx, rec.ID, patch); err != nil {
			result.Errors++
			log.Warn("patch failed", "id", rec.ID, "error", err)
			return
		}
	}
	result.Updated++
	result.Records = append(result.Records, domain.MigrationRecord{
		Title:       rec.Title,
		Slug:        rec.Slug,
		FieldsAdded: patch.Fields(),
		ItemsAdded:  patch.Items(),
	})
	log.Info("record updated", "fields", patch.Fields(), "items", patch.Items())
}
