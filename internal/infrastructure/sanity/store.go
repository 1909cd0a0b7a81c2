package sanity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
)

// maxImageBytes caps downloads of featured images before upload.
const maxImageBytes = 15 << 20

// Store is the content gateway backed by a Sanity dataset.
type Store struct {
	client  *Client
	images  *http.Client
	keys    keys.Generator
	logger  *slog.Logger
	newID   func() string
	nowFunc func() time.Time
}

var _ ports.ContentStore = (*Store)(nil)

// NewStore wraps a client. A nil key generator falls back to random keys.
func NewStore(client *Client, gen keys.Generator, logger *slog.Logger) *Store {
	if gen == nil {
		gen = keys.UUID{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		client:  client,
		images:  &http.Client{Timeout: 30 * time.Second},
		keys:    gen,
		logger:  logger,
		newID:   uuid.NewString,
		nowFunc: time.Now,
	}
}

// Create uploads the featured image (best effort) and creates the article
// document, hidden until reviewed.
func (s *Store) Create(ctx context.Context, draft domain.ArticleDraft) (string, error) {
	if draft.PublishedAt.IsZero() {
		draft.PublishedAt = s.nowFunc()
	}
	assetRef := ""
	if img := draft.FeaturedImage; img != nil {
		assetRef = img.AssetRef
		if assetRef == "" && img.URL != "" {
			ref, err := s.uploadFromURL(ctx, img.URL, firstNonEmpty(draft.Slug, "article"))
			if err != nil {
				s.logger.Warn("featured image upload failed", "title", logging.Title(draft.Title), "error", err)
			}
			assetRef = ref
		}
	}

	doc := newArticleDocument(s.newID(), draft, assetRef, s.keys)
	ids, err := s.client.Mutate(ctx, map[string]any{"create": doc})
	if err != nil {
		return "", fmt.Errorf("create article: %w", err)
	}
	if len(ids) > 0 && ids[0] != "" {
		return ids[0], nil
	}
	return doc.ID, nil
}

// Patch sets only the fields carried by the patch.
func (s *Store) Patch(ctx context.Context, id string, patch domain.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	_, err := s.client.Mutate(ctx, map[string]any{
		"patch": map[string]any{"id": id, "set": patch.Values()},
	})
	if err != nil {
		return fmt.Errorf("patch %s: %w", id, err)
	}
	return nil
}

// QueryMissing evaluates the filter in GROQ, newest first.
func (s *Store) QueryMissing(ctx context.Context, filter domain.MissingFilter, limit int) ([]domain.StoredArticle, error) {
	query := missingQuery(filter, limit > 0)
	params := map[string]any{"kind": filter.DocumentKind()}
	if limit > 0 {
		params["limit"] = limit
	}
	return s.fetch(ctx, query, params)
}

// RecentTitles lists article titles published after since.
func (s *Store) RecentTitles(ctx context.Context, since time.Time) ([]string, error) {
	var titles []string
	err := s.client.Query(ctx,
		`*[_type == "article" && publishedAt > $cutoff && defined(title)] | order(publishedAt desc).title`,
		map[string]any{"cutoff": since.UTC().Format(time.RFC3339)}, &titles)
	if err != nil {
		return nil, fmt.Errorf("recent titles: %w", err)
	}
	return titles, nil
}

// FindByReferenceType returns articles carrying a reference item of the type.
func (s *Store) FindByReferenceType(ctx context.Context, typ string) ([]domain.StoredArticle, error) {
	return s.fetch(ctx,
		`*[_type == "article" && count(references[_type == $type]) > 0] | order(publishedAt desc) `+projection,
		map[string]any{"type": typ})
}

// FindRelated matches titles against keywords or the category. Blog posts use
// their own visibility flag.
func (s *Store) FindRelated(ctx context.Context, q ports.RelatedQuery) ([]domain.ContentRef, error) {
	query, params := relatedQuery(q)
	var rows []struct {
		ID       string `json:"_id"`
		Title    string `json:"title"`
		Slug     string `json:"slug"`
		Category string `json:"category"`
	}
	if err := s.client.Query(ctx, query, params, &rows); err != nil {
		return nil, fmt.Errorf("related %s: %w", q.Kind, err)
	}
	refs := make([]domain.ContentRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, domain.ContentRef{ID: r.ID, Title: r.Title, Slug: r.Slug, Category: r.Category})
	}
	return refs, nil
}

func (s *Store) fetch(ctx context.Context, query string, params map[string]any) ([]domain.StoredArticle, error) {
	var docs []storedDocument
	if err := s.client.Query(ctx, query, params, &docs); err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	out := make([]domain.StoredArticle, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toArticle())
	}
	return out, nil
}

func (s *Store) uploadFromURL(ctx context.Context, imageURL, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	resp, err := s.images.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	ref, err := s.client.UploadImage(ctx, data, name+".jpg", resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.logger.Debug("image uploaded", "asset", ref, "bytes", len(data))
	return ref, nil
}

// missingCondition is the GROQ twin of MissingFilter.Matches for one field.
func missingCondition(field string) string {
	switch field {
	case domain.FieldQuickAnswer:
		return `(!defined(quickAnswer) || quickAnswer == "")`
	case domain.FieldKeyTakeaways, domain.FieldExpertTips, domain.FieldFAQSection, domain.FieldReferences,
		domain.FieldProductLinks, domain.FieldFeaturedProducts:
		return fmt.Sprintf("(!defined(%[1]s) || count(%[1]s) == 0)", field)
	case domain.FieldKyndallsTake:
		return "!defined(kyndallsTake.content)"
	default:
		return ""
	}
}

func missingQuery(filter domain.MissingFilter, limited bool) string {
	var conds []string
	for _, field := range filter.AnyEmpty {
		if c := missingCondition(field); c != "" {
			conds = append(conds, c)
		}
	}
	var sb strings.Builder
	sb.WriteString(`*[_type == $kind`)
	for _, field := range filter.AllPresent {
		if c := missingCondition(field); c != "" {
			sb.WriteString(" && !" + c)
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" && (" + strings.Join(conds, " || ") + ")")
	}
	sb.WriteString("] | order(publishedAt desc)")
	if limited {
		sb.WriteString("[0...$limit]")
	}
	sb.WriteString(" " + projection)
	return sb.String()
}

func relatedQuery(q ports.RelatedQuery) (string, map[string]any) {
	params := map[string]any{"kind": q.Kind}
	conds := []string{"_type == $kind"}
	if q.OnlyVisible {
		if q.Kind == domain.KindBlogPost {
			conds = append(conds, "showInBlog == true")
		} else {
			conds = append(conds, "showOnSite == true")
		}
	}
	if q.ExcludeTitle != "" {
		conds = append(conds, "title != $exclude")
		params["exclude"] = q.ExcludeTitle
	}
	var match []string
	if len(q.Keywords) > 0 {
		match = append(match, "title match $keywords")
		params["keywords"] = q.Keywords
	}
	if q.Category != "" {
		match = append(match, "category == $category")
		params["category"] = q.Category
	}
	if len(match) > 0 {
		conds = append(conds, "("+strings.Join(match, " || ")+")")
	}
	query := "*[" + strings.Join(conds, " && ") + "] | order(publishedAt desc)"
	if q.Limit > 0 {
		query += fmt.Sprintf("[0...%d]", q.Limit)
	}
	return query + ` {_id, title, "slug": slug.current, category}`, params
}
