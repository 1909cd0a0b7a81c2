package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStoreCreateAndPatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestBadger(t)

	id, err := s.Create(ctx, domain.ArticleDraft{Title: "Retinol Basics", Category: "skincare"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	answer := "Start slowly."
	faq := []domain.FAQItem{{Key: "f1", Type: domain.TypeFAQItem, Question: "Daily?", Answer: "No."}}
	require.NoError(t, s.Patch(ctx, id, domain.Patch{QuickAnswer: &answer, FAQSection: &faq}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.KindArticle, got.Kind)
	assert.Equal(t, "Retinol Basics", got.Title)
	assert.Equal(t, answer, got.QuickAnswer)
	assert.Equal(t, faq, got.FAQSection)
	assert.False(t, got.PublishedAt.IsZero())

	err = s.Patch(ctx, "missing", domain.Patch{QuickAnswer: &answer})
	require.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestBadgerStoreQueryMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestBadger(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	first, err := s.Create(ctx, domain.ArticleDraft{Title: "First"})
	require.NoError(t, err)
	done := domain.ArticleDraft{Title: "Done", References: []domain.Reference{{Key: "r", Type: domain.TypeSourceReference}}}
	done.QuickAnswer = "yes"
	done.KeyTakeaways = []domain.Takeaway{{Key: "t"}}
	done.FAQSection = []domain.FAQItem{{Key: "f"}}
	_, err = s.Create(ctx, done)
	require.NoError(t, err)
	third, err := s.Create(ctx, domain.ArticleDraft{Title: "Third"})
	require.NoError(t, err)
	_, err = s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "A blog post"})
	require.NoError(t, err)

	docs, err := s.QueryMissing(ctx, domain.GEOMissing, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, third, docs[0].ID)
	assert.Equal(t, first, docs[1].ID)

	docs, err = s.QueryMissing(ctx, domain.GEOMissing, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.QueryMissing(ctx, domain.ReferencesMissing, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestBadgerStoreQueryMissingBlogPosts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestBadger(t)

	_, err := s.Create(ctx, domain.ArticleDraft{Title: "An article", ProductLinks: []domain.ProductLink{{Name: "Serum"}}})
	require.NoError(t, err)
	legacy, err := s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{
		Title:        "Brow Favourites",
		ProductLinks: []domain.ProductLink{{Name: "Boy Brow"}},
	})
	require.NoError(t, err)
	_, err = s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "No products"})
	require.NoError(t, err)

	docs, err := s.QueryMissing(ctx, domain.ProductsUnmigrated, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, legacy, docs[0].ID)
	assert.Equal(t, domain.KindBlogPost, docs[0].Kind)

	products := []domain.Product{{Key: "k1", Type: domain.TypeProduct, ProductName: "Boy Brow"}}
	require.NoError(t, s.Patch(ctx, legacy, domain.Patch{FeaturedProducts: &products}))

	docs, err = s.QueryMissing(ctx, domain.ProductsUnmigrated, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = s.QueryMissing(ctx, domain.BlogPostGEOMissing, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, domain.KindBlogPost, doc.Kind)
	}
}

func TestBadgerStoreRecentTitlesAndReferenceTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestBadger(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.AddDate(0, 0, -60) }
	_, err := s.Create(ctx, domain.ArticleDraft{
		Title:      "Old Lash Guide",
		References: []domain.Reference{{Key: "r1", Type: domain.TypeReference}},
	})
	require.NoError(t, err)

	s.now = func() time.Time { return now }
	_, err = s.Create(ctx, domain.ArticleDraft{Title: "Fresh Serum Guide"})
	require.NoError(t, err)

	titles, err := s.RecentTitles(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh Serum Guide"}, titles)

	legacy, err := s.FindByReferenceType(ctx, domain.TypeReference)
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.Equal(t, "Old Lash Guide", legacy[0].Title)
}

func TestBadgerStoreFindRelated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestBadger(t)

	_, err := s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "My serum shelf", Category: "lifestyle", ShowOnSite: true})
	require.NoError(t, err)
	_, err = s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "Hidden serum post", ShowOnSite: false})
	require.NoError(t, err)
	_, err = s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "Weekend hair day", Category: "skincare", ShowOnSite: true})
	require.NoError(t, err)
	_, err = s.Seed(ctx, domain.KindBlogPost, domain.ArticleDraft{Title: "Travel diary", Category: "fashion", ShowOnSite: true})
	require.NoError(t, err)

	refs, err := s.FindRelated(ctx, ports.RelatedQuery{
		Kind:        domain.KindBlogPost,
		Keywords:    []string{"serum", "skincare"},
		Category:    "skincare",
		OnlyVisible: true,
		Limit:       5,
	})
	require.NoError(t, err)
	titles := make([]string, 0, len(refs))
	for _, r := range refs {
		assert.NotEmpty(t, r.ID)
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"My serum shelf", "Weekend hair day"}, titles)

	_, err = s.Create(ctx, domain.ArticleDraft{Title: "Serum 101", ShowOnSite: true})
	require.NoError(t, err)
	refs, err = s.FindRelated(ctx, ports.RelatedQuery{
		Kind:         domain.KindArticle,
		Keywords:     []string{"serum"},
		ExcludeTitle: "Serum 101",
		OnlyVisible:  true,
		Limit:        3,
	})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestBadgerStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	s := openTestBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, domain.ArticleDraft{Title: "x"})
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.QueryMissing(ctx, domain.GEOMissing, 1)
	require.ErrorIs(t, err, context.Canceled)
}
