package linker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/trending"
)

type relatedStore struct {
	ports.ContentStore
	byKind  map[string][]domain.ContentRef
	errKind map[string]error
	queries []ports.RelatedQuery
}

func (s *relatedStore) FindRelated(_ context.Context, q ports.RelatedQuery) ([]domain.ContentRef, error) {
	s.queries = append(s.queries, q)
	if err := s.errKind[q.Kind]; err != nil {
		return nil, err
	}
	return s.byKind[q.Kind], nil
}

func newFinder(store ports.ContentStore) *Finder {
	return NewFinder(store, trending.NewTokenizer(trending.DefaultMinWordLength, trending.DefaultPreserveWords), nil)
}

func TestKeywordsFromTitleAndCategory(t *testing.T) {
	t.Parallel()

	f := newFinder(&relatedStore{})
	got := f.Keywords("The Best Lip Oil for Dry Skin, Ranked", "Skincare")
	assert.Equal(t, []string{"best", "lip", "dry", "skin", "ranked", "skincare"}, got)

	assert.Equal(t, []string{"nails"}, f.Keywords("", "nails"))
}

func TestFindRelatedFiltersCandidates(t *testing.T) {
	t.Parallel()

	store := &relatedStore{byKind: map[string][]domain.ContentRef{
		domain.KindBlogPost: {
			{ID: "p1", Title: "My Retinol Journey", Category: "makeup"},
			{ID: "p2", Title: "Spring Outfits", Category: "fashion"},
			{ID: "p3", Title: "Sunday Reset", Category: "skincare"},
			{ID: "p4", Title: "Retinol Mistakes", Category: "hair"},
			{ID: "p5", Title: "More Retinol", Category: "hair"},
		},
		domain.KindArticle: {
			{ID: "a1", Title: "Retinol Serum Guide"},
			{ID: "a2", Title: "Cat Videos"},
			{ID: "a3", Title: "Retinol At Night"},
			{ID: "a4", Title: "Retinol Again"},
		},
	}}
	f := newFinder(store)

	posts, articles, err := f.FindRelated(context.Background(), "Retinol Serum Guide", "skincare")
	require.NoError(t, err)

	ids := func(refs []domain.ContentRef) []string {
		out := make([]string, len(refs))
		for i, r := range refs {
			out[i] = r.ID
		}
		return out
	}
	assert.Equal(t, []string{"p1", "p3", "p4"}, ids(posts))
	assert.Equal(t, []string{"a3", "a4"}, ids(articles))

	require.Len(t, store.queries, 2)
	assert.Equal(t, domain.KindBlogPost, store.queries[0].Kind)
	assert.True(t, store.queries[0].OnlyVisible)
	assert.Equal(t, "Retinol Serum Guide", store.queries[1].ExcludeTitle)
}

func TestFindRelatedDegradesPerKind(t *testing.T) {
	t.Parallel()

	store := &relatedStore{
		byKind:  map[string][]domain.ContentRef{domain.KindArticle: {{ID: "a1", Title: "Nail Wraps 101"}}},
		errKind: map[string]error{domain.KindBlogPost: errors.New("timeout")},
	}
	posts, articles, err := newFinder(store).FindRelated(context.Background(), "Nail wraps at home", "")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Len(t, articles, 1)
	assert.Equal(t, domain.DefaultCategory, store.queries[0].Category)

	store.errKind[domain.KindArticle] = errors.New("timeout")
	_, _, err = newFinder(store).FindRelated(context.Background(), "Nail wraps at home", "nails")
	require.Error(t, err)
}
