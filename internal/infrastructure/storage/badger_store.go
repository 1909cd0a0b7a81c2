package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

// record is the badgerhold row. Queried columns are lifted out of the
// document so criteria can address them by name.
type record struct {
	ID         string
	Kind       string `badgerhold:"index"`
	Title      string
	Category   string
	ShowOnSite bool
	CreatedAt  time.Time
	Doc        domain.StoredArticle
}

func newRecord(doc domain.StoredArticle, createdAt time.Time) record {
	return record{
		ID:         doc.ID,
		Kind:       doc.Kind,
		Title:      doc.Title,
		Category:   doc.Category,
		ShowOnSite: doc.ShowOnSite,
		CreatedAt:  createdAt,
		Doc:        doc,
	}
}

// BadgerStore keeps documents in an embedded badger database.
type BadgerStore struct {
	store  *badgerhold.Store
	logger *slog.Logger
	now    func() time.Time
	// serialises read-modify-write patches
	mu sync.Mutex
}

var _ ports.ContentStore = (*BadgerStore)(nil)

// OpenBadger opens (or creates) the database directory at path.
func OpenBadger(path string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Clean(path), 0o755); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", path, err)
	}
	logger.Debug("badger store opened", "path", path)
	return &BadgerStore{store: store, logger: logger, now: time.Now}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Create stores a new article document and returns its id.
func (s *BadgerStore) Create(ctx context.Context, draft domain.ArticleDraft) (string, error) {
	return s.insert(ctx, domain.KindArticle, draft)
}

// Seed inserts a document of any kind. Used to import blog posts and by tests.
func (s *BadgerStore) Seed(ctx context.Context, kind string, draft domain.ArticleDraft) (string, error) {
	return s.insert(ctx, kind, draft)
}

func (s *BadgerStore) insert(ctx context.Context, kind string, draft domain.ArticleDraft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := s.now().UTC()
	if draft.PublishedAt.IsZero() {
		draft.PublishedAt = now
	}
	doc := domain.StoredArticle{ID: uuid.NewString(), Kind: kind, ArticleDraft: draft}
	if err := s.store.Insert(doc.ID, newRecord(doc, now)); err != nil {
		return "", fmt.Errorf("insert %s: %w", kind, err)
	}
	return doc.ID, nil
}

// Patch sets the patch fields on the stored document.
func (s *BadgerStore) Patch(ctx context.Context, id string, patch domain.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec record
	if err := s.store.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("patch %s: %w", id, domain.ErrStoreNotFound)
		}
		return fmt.Errorf("get %s: %w", id, err)
	}
	patch.Apply(&rec.Doc.ArticleDraft)
	if err := s.store.Update(id, rec); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	return nil
}

// Get returns one document.
func (s *BadgerStore) Get(ctx context.Context, id string) (domain.StoredArticle, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredArticle{}, err
	}
	var rec record
	if err := s.store.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.StoredArticle{}, domain.ErrStoreNotFound
		}
		return domain.StoredArticle{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec.Doc, nil
}

// QueryMissing returns documents of the filter's kind, newest first, for
// which the filter matches.
func (s *BadgerStore) QueryMissing(ctx context.Context, filter domain.MissingFilter, limit int) ([]domain.StoredArticle, error) {
	missing := func(ra *badgerhold.RecordAccess) (bool, error) {
		doc, ok := docField(ra)
		return ok && filter.Matches(doc.ArticleDraft), nil
	}
	query := badgerhold.Where("Kind").Eq(filter.DocumentKind()).And("Doc").MatchFunc(missing).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	return s.find(ctx, query)
}

// RecentTitles lists article titles published since the given time.
func (s *BadgerStore) RecentTitles(ctx context.Context, since time.Time) ([]string, error) {
	docs, err := s.find(ctx, badgerhold.Where("Kind").Eq(domain.KindArticle).And("CreatedAt").Ge(since))
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Title != "" {
			titles = append(titles, doc.Title)
		}
	}
	return titles, nil
}

// FindByReferenceType returns articles holding at least one reference with the type.
func (s *BadgerStore) FindByReferenceType(ctx context.Context, typ string) ([]domain.StoredArticle, error) {
	hasType := func(ra *badgerhold.RecordAccess) (bool, error) {
		doc, ok := docField(ra)
		return ok && doc.HasReferenceType(typ), nil
	}
	query := badgerhold.Where("Kind").Eq(domain.KindArticle).And("Doc").MatchFunc(hasType).SortBy("CreatedAt")
	return s.find(ctx, query)
}

// FindRelated returns newest-first documents whose title holds a keyword or
// whose category equals the query category.
func (s *BadgerStore) FindRelated(ctx context.Context, q ports.RelatedQuery) ([]domain.ContentRef, error) {
	query := badgerhold.Where("Kind").Eq(q.Kind)
	if q.OnlyVisible {
		query = query.And("ShowOnSite").Eq(true)
	}
	if q.ExcludeTitle != "" {
		query = query.And("Title").Ne(q.ExcludeTitle)
	}
	query = query.And("Title").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		switch rec := ra.Record().(type) {
		case *record:
			return relatedMatch(rec.Title, rec.Category, q), nil
		case record:
			return relatedMatch(rec.Title, rec.Category, q), nil
		}
		return false, nil
	}).SortBy("CreatedAt").Reverse()
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	docs, err := s.find(ctx, query)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.ContentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, domain.ContentRef{ID: doc.ID, Title: doc.Title, Slug: doc.Slug, Category: doc.Category})
	}
	return refs, nil
}

func (s *BadgerStore) find(ctx context.Context, query *badgerhold.Query) ([]domain.StoredArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []record
	if err := s.store.Find(&rows, query); err != nil {
		return nil, fmt.Errorf("badger find: %w", err)
	}
	out := make([]domain.StoredArticle, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Doc)
	}
	return out, nil
}

func docField(ra *badgerhold.RecordAccess) (domain.StoredArticle, bool) {
	switch doc := ra.Field().(type) {
	case domain.StoredArticle:
		return doc, true
	case *domain.StoredArticle:
		return *doc, doc != nil
	}
	return domain.StoredArticle{}, false
}

// relatedMatch mirrors the title/category predicate of the related lookup.
func relatedMatch(title, category string, q ports.RelatedQuery) bool {
	if q.Category != "" && strings.EqualFold(category, q.Category) {
		return true
	}
	if len(q.Keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, k := range q.Keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
