package usecase

import (
	"context"
	"fmt"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

// ReferencesEnricher backfills citations on records without any.
type ReferencesEnricher struct {
	generator ports.ReferenceGenerator
}

var _ Enricher = (*ReferencesEnricher)(nil)

// NewReferencesEnricher wraps a reference generator.
func NewReferencesEnricher(generator ports.ReferenceGenerator) *ReferencesEnricher {
	return &ReferencesEnricher{generator: generator}
}

func (e *ReferencesEnricher) Name() string { return domain.JobReferencesBackfill }

func (e *ReferencesEnricher) Filter() domain.MissingFilter { return domain.ReferencesMissing }

// Enrich asks for references; the generator has already dropped invalid items.
func (e *ReferencesEnricher) Enrich(ctx context.Context, rec domain.StoredArticle, summary string) (domain.Patch, error) {
	questions := make([]string, 0, len(rec.FAQSection))
	for _, f := range rec.FAQSection {
		questions = append(questions, f.Question)
	}

	refs, err := e.generator.GenerateReferences(ctx, domain.EnrichmentInput{
		Title:       rec.Title,
		Category:    rec.Category,
		Excerpt:     rec.Excerpt,
		QuickAnswer: rec.QuickAnswer,
		Summary:     summary,
		Questions:   questions,
	})
	if err != nil {
		return domain.Patch{}, fmt.Errorf("generate references: %w", err)
	}
	if len(refs) == 0 {
		return domain.Patch{}, nil
	}
	return domain.Patch{References: &refs}, nil
}
