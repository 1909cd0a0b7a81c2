package usecase

import (
	"context"
	"fmt"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

// GEOEnricher fills quick answers, takeaways, tips, FAQs and the personal take.
type GEOEnricher struct {
	generator ports.GEOGenerator
	name      string
	filter    domain.MissingFilter
}

var _ Enricher = (*GEOEnricher)(nil)

// NewGEOEnricher wraps a GEO generator for articles.
func NewGEOEnricher(generator ports.GEOGenerator) *GEOEnricher {
	return &GEOEnricher{generator: generator, name: domain.JobGEOMigration, filter: domain.GEOMissing}
}

// NewBlogPostGEOEnricher wraps a GEO generator for blog posts. Their product
// names are passed along to the prompt.
func NewBlogPostGEOEnricher(generator ports.GEOGenerator) *GEOEnricher {
	return &GEOEnricher{generator: generator, name: domain.JobBlogPostGEO, filter: domain.BlogPostGEOMissing}
}

func (e *GEOEnricher) Name() string { return e.name }

func (e *GEOEnricher) Filter() domain.MissingFilter { return e.filter }

// Enrich generates GEO content and keeps only the fields the record lacks.
func (e *GEOEnricher) Enrich(ctx context.Context, rec domain.StoredArticle, summary string) (domain.Patch, error) {
	geo, err := e.generator.GenerateGEO(ctx, domain.EnrichmentInput{
		Title:    rec.Title,
		Category: rec.Category,
		Excerpt:  rec.Excerpt,
		Summary:  summary,
		Products: rec.ProductNames(),
	})
	if err != nil {
		return domain.Patch{}, fmt.Errorf("generate geo: %w", err)
	}

	var patch domain.Patch
	if rec.QuickAnswer == "" && geo.QuickAnswer != "" {
		patch.QuickAnswer = &geo.QuickAnswer
	}
	if len(rec.KeyTakeaways) == 0 && len(geo.KeyTakeaways) > 0 {
		patch.KeyTakeaways = &geo.KeyTakeaways
	}
	if len(rec.ExpertTips) == 0 && len(geo.ExpertTips) > 0 {
		patch.ExpertTips = &geo.ExpertTips
	}
	if len(rec.FAQSection) == 0 && len(geo.FAQSection) > 0 {
		patch.FAQSection = &geo.FAQSection
	}
	if (rec.KyndallsTake == nil || rec.KyndallsTake.Content == "") && geo.KyndallsTake != nil {
		patch.KyndallsTake = geo.KyndallsTake
	}
	return patch, nil
}
