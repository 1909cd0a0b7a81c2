package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
)

// AssemblerDeps wires the collaborators used to build one draft.
type AssemblerDeps struct {
	Generator ports.ArticleGenerator
	Images    ports.ImageSearch
	Related   ports.RelatedContent
	Keys      keys.Generator
	Now       func() time.Time
	Logger    *slog.Logger
}

// Assembler turns a selected topic into a hidden draft.
type Assembler struct {
	generator ports.ArticleGenerator
	images    ports.ImageSearch
	related   ports.RelatedContent
	keys      keys.Generator
	now       func() time.Time
	logger    *slog.Logger
}

// NewAssembler constructs the draft assembler.
func NewAssembler(deps AssemblerDeps) *Assembler {
	a := &Assembler{
		generator: deps.Generator,
		images:    deps.Images,
		related:   deps.Related,
		keys:      deps.Keys,
		now:       deps.Now,
		logger:    deps.Logger,
	}
	if a.keys == nil {
		a.keys = keys.UUID{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Assemble generates the article and decorates it with an image and related
// links. Only a generation failure is returned; image and related lookups
// degrade to an undecorated draft.
func (a *Assembler) Assemble(ctx context.Context, topic domain.TrendCandidate) (domain.ArticleDraft, error) {
	if a.generator == nil {
		return domain.ArticleDraft{}, fmt.Errorf("article generator is not configured")
	}

	draft, err := a.generator.GenerateArticle(ctx, topic)
	if err != nil {
		return domain.ArticleDraft{}, fmt.Errorf("generate %q: %w", topic.Topic, err)
	}

	now := a.now()
	draft.ShowOnSite = false
	draft.AutoGenerated = true
	draft.PublishedAt = now
	draft.TrendSource = &domain.TrendSource{
		Platform:      topic.Platform,
		TrendingTopic: topic.Topic,
		TrendingScore: topic.TrendingScore,
		DetectedAt:    now,
	}

	draft.FeaturedImage = a.image(ctx, topic.Topic, draft.Category)
	draft.RelatedPosts, draft.RelatedArticles = a.relatedContent(ctx, draft.Title, draft.Category)

	a.logger.Info("draft assembled",
		"title", logging.Title(draft.Title),
		"image", draft.FeaturedImage != nil,
		"related_posts", len(draft.RelatedPosts),
		"related_articles", len(draft.RelatedArticles))
	return draft, nil
}

func (a *Assembler) image(ctx context.Context, query, category string) *domain.FeaturedImage {
	if a.images == nil {
		return nil
	}
	img, err := a.images.SearchImage(ctx, query, category)
	if err != nil {
		a.logger.Warn("image search failed", "topic", query, "error", err)
		return nil
	}
	if img == nil {
		a.logger.Info("no image found", "topic", query)
		return nil
	}
	if err := a.images.TrackDownload(ctx, img); err != nil {
		a.logger.Debug("image download tracking failed", "error", err)
	}
	return img
}

func (a *Assembler) relatedContent(ctx context.Context, title, category string) ([]domain.ContentRef, []domain.ContentRef) {
	if a.related == nil {
		return nil, nil
	}
	posts, articles, err := a.related.FindRelated(ctx, title, category)
	if err != nil {
		a.logger.Warn("related content lookup failed", "title", logging.Title(title), "error", err)
		return nil, nil
	}
	return a.rekey(posts), a.rekey(articles)
}

func (a *Assembler) rekey(refs []domain.ContentRef) []domain.ContentRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]domain.ContentRef, len(refs))
	for i, ref := range refs {
		ref.Key = a.keys.NewKey()
		out[i] = ref
	}
	return out
}
