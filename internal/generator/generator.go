package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
	"BlogEngine/internal/llmjson"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/richtext"
)

// Generator turns LLM completions into drafts, GEO content and references.
type Generator struct {
	completer ports.Completer
	keys      keys.Generator
	now       func() time.Time
	logger    *slog.Logger
}

var (
	_ ports.ArticleGenerator   = (*Generator)(nil)
	_ ports.GEOGenerator       = (*Generator)(nil)
	_ ports.ReferenceGenerator = (*Generator)(nil)
)

// Option customises a Generator.
type Option func(*Generator)

// WithKeys overrides the key generator.
func WithKeys(gen keys.Generator) Option {
	return func(g *Generator) { g.keys = gen }
}

// WithClock overrides the clock used for access dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New wires a completer into a Generator.
func New(completer ports.Completer, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{completer: completer, keys: keys.UUID{}, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type articlePayload struct {
	rawGEO
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	Excerpt        string         `json:"excerpt"`
	Introduction   string         `json:"introduction"`
	Content        string         `json:"content"`
	SEOTitle       string         `json:"seoTitle"`
	SEODescription string         `json:"seoDescription"`
	Keywords       []string       `json:"keywords"`
	References     []rawReference `json:"references"`
}

// GenerateArticle asks for a full draft in one completion. A response that
// cannot be decoded or has no title or body is reported as domain.ErrNoContent.
func (g *Generator) GenerateArticle(ctx context.Context, topic domain.TrendCandidate) (domain.ArticleDraft, error) {
	raw, err := g.completer.Complete(ctx, articlePrompt(topic))
	if err != nil {
		return domain.ArticleDraft{}, fmt.Errorf("complete article: %w", err)
	}

	res := llmjson.Parse[articlePayload](raw)
	if !res.OK {
		return domain.ArticleDraft{}, fmt.Errorf("parse article: %w: %v", domain.ErrNoContent, res.Err)
	}
	p := res.Value
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || strings.TrimSpace(p.Content) == "" {
		return domain.ArticleDraft{}, fmt.Errorf("article for %q: %w", topic.Topic, domain.ErrNoContent)
	}

	draft := domain.ArticleDraft{
		Title:        p.Title,
		Slug:         Slug(p.Title),
		Category:     normalizeCategory(p.Category),
		Excerpt:      strings.TrimSpace(p.Excerpt),
		Introduction: richtext.FromMarkdown(p.Introduction, g.keys),
		MainContent:  richtext.FromMarkdown(p.Content, g.keys),
		GEOContent:   cleanGEO(p.rawGEO, g.keys),
		References:   cleanReferences(p.References, g.keys, g.now()),
		SEO: domain.SEO{
			Title:       orDefault(strings.TrimSpace(p.SEOTitle), p.Title),
			Description: orDefault(strings.TrimSpace(p.SEODescription), strings.TrimSpace(p.Excerpt)),
			Keywords:    cleanKeywords(p.Keywords),
		},
	}
	return draft, nil
}

// GenerateGEO asks for the GEO field-set of an existing record. An undecodable
// answer yields empty content and no error.
func (g *Generator) GenerateGEO(ctx context.Context, in domain.EnrichmentInput) (domain.GEOContent, error) {
	raw, err := g.completer.Complete(ctx, geoPrompt(in))
	if err != nil {
		return domain.GEOContent{}, fmt.Errorf("complete geo: %w", err)
	}
	res := llmjson.Parse[rawGEO](raw)
	if !res.OK {
		g.debug("geo response not decodable", "title", in.Title, "error", res.Err)
		return domain.GEOContent{}, nil
	}
	return cleanGEO(res.Value, g.keys), nil
}

// GenerateReferences asks for citations. Invalid items are dropped; an
// undecodable answer yields no references and no error.
func (g *Generator) GenerateReferences(ctx context.Context, in domain.EnrichmentInput) ([]domain.Reference, error) {
	raw, err := g.completer.Complete(ctx, referencesPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("complete references: %w", err)
	}
	res := llmjson.Parse[struct {
		References []rawReference `json:"references"`
	}](raw)
	if !res.OK {
		g.debug("references response not decodable", "title", in.Title, "error", res.Err)
		return nil, nil
	}
	return cleanReferences(res.Value.References, g.keys, g.now()), nil
}

// Slug builds the URL slug for a title.
func Slug(title string) string {
	s := slug.Make(title)
	if len(s) > 96 {
		s = strings.TrimRight(s[:96], "-")
	}
	return s
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out
}

func (g *Generator) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
