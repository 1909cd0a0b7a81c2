package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/trending"
)

type memoryStore struct {
	mu        sync.Mutex
	order     []string
	docs      map[string]domain.StoredArticle
	patches   int
	recent    []string
	recentErr error
	createErr error
	patchErr  map[string]error
}

var _ ports.ContentStore = (*memoryStore)(nil)

func newMemoryStore(records ...domain.StoredArticle) *memoryStore {
	s := &memoryStore{docs: map[string]domain.StoredArticle{}, patchErr: map[string]error{}}
	for _, r := range records {
		s.order = append(s.order, r.ID)
		s.docs[r.ID] = r
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, draft domain.ArticleDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	id := fmt.Sprintf("doc-%d", len(s.order)+1)
	s.order = append(s.order, id)
	s.docs[id] = domain.StoredArticle{ID: id, Kind: domain.KindArticle, ArticleDraft: draft}
	return id, nil
}

func (s *memoryStore) Patch(_ context.Context, id string, patch domain.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.patchErr[id]; err != nil {
		return err
	}
	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrStoreNotFound
	}
	patch.Apply(&doc.ArticleDraft)
	s.docs[id] = doc
	s.patches++
	return nil
}

func (s *memoryStore) QueryMissing(_ context.Context, filter domain.MissingFilter, limit int) ([]domain.StoredArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.StoredArticle
	for _, id := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		if doc := s.docs[id]; doc.Kind == filter.DocumentKind() && filter.Matches(doc.ArticleDraft) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memoryStore) RecentTitles(context.Context, time.Time) ([]string, error) {
	return s.recent, s.recentErr
}

func (s *memoryStore) FindByReferenceType(_ context.Context, typ string) ([]domain.StoredArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.StoredArticle
	for _, id := range s.order {
		if doc := s.docs[id]; doc.HasReferenceType(typ) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memoryStore) FindRelated(context.Context, ports.RelatedQuery) ([]domain.ContentRef, error) {
	return nil, nil
}

func (s *memoryStore) get(id string) domain.StoredArticle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

type fakeGEO struct {
	out   domain.GEOContent
	err   error
	calls int
	last  domain.EnrichmentInput
	seen  []string
}

func (f *fakeGEO) GenerateGEO(_ context.Context, in domain.EnrichmentInput) (domain.GEOContent, error) {
	f.calls++
	f.last = in
	f.seen = append(f.seen, in.Title)
	return f.out, f.err
}

type fakeReferences struct {
	out   []domain.Reference
	err   error
	calls int
	last  domain.EnrichmentInput
}

func (f *fakeReferences) GenerateReferences(_ context.Context, in domain.EnrichmentInput) ([]domain.Reference, error) {
	f.calls++
	f.last = in
	return f.out, f.err
}

type fakeArticles struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
}

func (f *fakeArticles) GenerateArticle(_ context.Context, topic domain.TrendCandidate) (domain.ArticleDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, topic.Topic)
	if err := f.fail[topic.Topic]; err != nil {
		return domain.ArticleDraft{}, err
	}
	return domain.ArticleDraft{
		Title:    "All About " + topic.Topic,
		Slug:     "all-about",
		Category: "skincare",
		Excerpt:  "Everything about " + topic.Topic,
		// a generator must never publish on its own
		ShowOnSite: true,
	}, nil
}

type fakeImages struct {
	img       *domain.FeaturedImage
	err       error
	trackErr  error
	tracked   int
	lastQuery string
}

func (f *fakeImages) SearchImage(_ context.Context, query, _ string) (*domain.FeaturedImage, error) {
	f.lastQuery = query
	return f.img, f.err
}

func (f *fakeImages) TrackDownload(context.Context, *domain.FeaturedImage) error {
	f.tracked++
	return f.trackErr
}

type fakeRelated struct {
	posts, articles []domain.ContentRef
	err             error
}

func (f fakeRelated) FindRelated(context.Context, string, string) ([]domain.ContentRef, []domain.ContentRef, error) {
	return f.posts, f.articles, f.err
}

type staticFetcher []trending.Batch

func (f staticFetcher) FetchAll(context.Context) []trending.Batch { return f }

type recordingNotifier struct {
	digests []string
	err     error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

type sequenceKeys struct {
	mu sync.Mutex
	n  int
}

func (k *sequenceKeys) NewKey() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.n++
	return fmt.Sprintf("k%d", k.n)
}

var errBoom = errors.New("boom")

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}
