package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
)

// ReferenceTypeMigration rewrites legacy "reference" citation items to
// "sourceReference", patching the whole array per record.
type ReferenceTypeMigration struct {
	store  ports.ContentStore
	dryRun bool
	now    func() time.Time
	logger *slog.Logger
}

var _ Job = (*ReferenceTypeMigration)(nil)

// NewReferenceTypeMigration builds the rename job.
func NewReferenceTypeMigration(store ports.ContentStore, dryRun bool, logger *slog.Logger) *ReferenceTypeMigration {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReferenceTypeMigration{store: store, dryRun: dryRun, now: time.Now, logger: logger}
}

func (m *ReferenceTypeMigration) Name() string { return domain.JobReferenceTypes }

// Run is a no-op once no record holds a legacy item.
func (m *ReferenceTypeMigration) Run(ctx context.Context) domain.MigrationResult {
	result := domain.MigrationResult{Sweep: m.Name(), DryRun: m.dryRun, Records: []domain.MigrationRecord{}, StartedAt: m.now()}

	records, err := m.store.FindByReferenceType(ctx, domain.TypeReference)
	if err != nil {
		result.Errors++
		result.Error = fmt.Errorf("find legacy references: %w", err).Error()
		result.FinishedAt = m.now()
		return result
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			result.Error = ctx.Err().Error()
			break
		}
		result.Processed++
		if !rec.HasReferenceType(domain.TypeReference) {
			result.Skipped++
			continue
		}

		refs := make([]domain.Reference, len(rec.References))
		changed := 0
		for i, ref := range rec.References {
			if ref.Type == domain.TypeReference {
				ref.Type = domain.TypeSourceReference
				changed++
			}
			refs[i] = ref
		}

		if !m.dryRun {
			if err := m.store.Patch(ctx, rec.ID, domain.Patch{References: &refs}); err != nil {
				result.Errors++
				m.logger.Warn("reference type patch failed", "id", rec.ID, "error", err)
				continue
			}
		}
		result.Updated++
		result.Records = append(result.Records, domain.MigrationRecord{
			Title:       rec.Title,
			Slug:        rec.Slug,
			FieldsAdded: []string{domain.FieldReferences},
			ItemsAdded:  changed,
		})
		m.logger.Info("reference types fixed", "title", logging.Title(rec.Title), "items", changed)
	}

	if result.Updated == 0 && result.Errors == 0 {
		m.logger.Info("no reference type migrations needed")
	}
	result.FinishedAt = m.now()
	return result
}
