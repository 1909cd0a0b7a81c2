package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/trending"
)

const (
	maxKeywords  = 10
	postsLimit   = 3
	articleLimit = 2
	// candidates fetched before the title filter narrows them down
	postCandidates    = 5
	articleCandidates = 3
)

// Finder picks existing posts and articles worth linking from a new draft.
type Finder struct {
	store     ports.ContentStore
	tokenizer trending.Tokenizer
	logger    *slog.Logger
}

var _ ports.RelatedContent = (*Finder)(nil)

// NewFinder builds a finder on top of the content gateway.
func NewFinder(store ports.ContentStore, tok trending.Tokenizer, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Finder{store: store, tokenizer: tok, logger: logger}
}

// FindRelated returns up to three blog posts matching a keyword or the
// category, and up to two visible articles whose title shares a keyword.
// A failing lookup only empties its own list.
func (f *Finder) FindRelated(ctx context.Context, title, category string) ([]domain.ContentRef, []domain.ContentRef, error) {
	if strings.TrimSpace(category) == "" {
		category = domain.DefaultCategory
	}
	keywords := f.Keywords(title, category)
	f.logger.Debug("related content keywords", "keywords", keywords)

	posts, postErr := f.posts(ctx, keywords, category)
	if postErr != nil {
		f.logger.Warn("related blog posts lookup failed", "error", postErr)
	}
	articles, articleErr := f.articles(ctx, keywords, title)
	if articleErr != nil {
		f.logger.Warn("related articles lookup failed", "error", articleErr)
	}
	if postErr != nil && articleErr != nil {
		return nil, nil, errors.Join(postErr, articleErr)
	}
	return posts, articles, nil
}

// Keywords extracts significant title words plus the category.
func (f *Finder) Keywords(title, category string) []string {
	keywords := f.tokenizer.Keywords(title)
	if c := strings.ToLower(strings.TrimSpace(category)); c != "" && !contains(keywords, c) {
		keywords = append(keywords, c)
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func (f *Finder) posts(ctx context.Context, keywords []string, category string) ([]domain.ContentRef, error) {
	found, err := f.store.FindRelated(ctx, ports.RelatedQuery{
		Kind:        domain.KindBlogPost,
		Keywords:    keywords,
		Category:    category,
		OnlyVisible: true,
		Limit:       postCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("find blog posts: %w", err)
	}
	out := make([]domain.ContentRef, 0, postsLimit)
	for _, ref := range found {
		if len(out) == postsLimit {
			break
		}
		if titleMatches(ref.Title, keywords) || strings.EqualFold(ref.Category, category) {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (f *Finder) articles(ctx context.Context, keywords []string, title string) ([]domain.ContentRef, error) {
	found, err := f.store.FindRelated(ctx, ports.RelatedQuery{
		Kind:         domain.KindArticle,
		Keywords:     keywords,
		ExcludeTitle: title,
		OnlyVisible:  true,
		Limit:        articleCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	out := make([]domain.ContentRef, 0, articleLimit)
	for _, ref := range found {
		if len(out) == articleLimit {
			break
		}
		if ref.Title != title && titleMatches(ref.Title, keywords) {
			out = append(out, ref)
		}
	}
	return out, nil
}

func titleMatches(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
