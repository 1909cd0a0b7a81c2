package ports

import (
	"context"
	"time"

	"BlogEngine/internal/domain"
)

// TrendSource pulls trending topics from one platform.
type TrendSource interface {
	Name() string
	Platform() domain.Platform
	// Enabled reports whether the source has the credentials it needs.
	Enabled() bool
	FetchTrends(ctx context.Context) ([]domain.TrendCandidate, error)
}

// Completer sends a prompt to an LLM and returns the raw text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ArticleGenerator drafts an article for a topic.
type ArticleGenerator interface {
	GenerateArticle(ctx context.Context, topic domain.TrendCandidate) (domain.ArticleDraft, error)
}

// GEOGenerator produces GEO content for an existing record. A nil error with
// empty content means nothing usable came back.
type GEOGenerator interface {
	GenerateGEO(ctx context.Context, in domain.EnrichmentInput) (domain.GEOContent, error)
}

// ReferenceGenerator proposes citations for an existing record.
type ReferenceGenerator interface {
	GenerateReferences(ctx context.Context, in domain.EnrichmentInput) ([]domain.Reference, error)
}

// ImageSearch finds a stock photo for a topic. Nil means nothing was found.
type ImageSearch interface {
	SearchImage(ctx context.Context, query, category string) (*domain.FeaturedImage, error)
	TrackDownload(ctx context.Context, image *domain.FeaturedImage) error
}

// RelatedContent finds existing records worth linking from a new draft.
type RelatedContent interface {
	FindRelated(ctx context.Context, title, category string) (posts, articles []domain.ContentRef, err error)
}

// RelatedQuery narrows the gateway lookup used by the related-content finder.
type RelatedQuery struct {
	Kind         string
	Keywords     []string
	Category     string
	ExcludeTitle string
	OnlyVisible  bool
	Limit        int
}

// ContentStore is the persistence gateway for drafts and stored records.
// QueryMissing evaluates the filter inside the store.
type ContentStore interface {
	Create(ctx context.Context, draft domain.ArticleDraft) (string, error)
	Patch(ctx context.Context, id string, patch domain.Patch) error
	QueryMissing(ctx context.Context, filter domain.MissingFilter, limit int) ([]domain.StoredArticle, error)
	RecentTitles(ctx context.Context, since time.Time) ([]string, error)
	FindByReferenceType(ctx context.Context, typ string) ([]domain.StoredArticle, error)
	FindRelated(ctx context.Context, q RelatedQuery) ([]domain.ContentRef, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
