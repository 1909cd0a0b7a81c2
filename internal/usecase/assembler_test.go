package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
)

func TestAssembleProducesHiddenAutoGeneratedDraft(t *testing.T) {
	t.Parallel()

	now := fixedClock()
	img := &domain.FeaturedImage{URL: "https://images.example/1.jpg", Alt: "serum"}
	images := &fakeImages{img: img}
	asm := NewAssembler(AssemblerDeps{
		Generator: &fakeArticles{},
		Images:    images,
		Related: fakeRelated{
			posts:    []domain.ContentRef{{ID: "p1", Key: "old"}},
			articles: []domain.ContentRef{{ID: "a1"}},
		},
		Keys: &sequenceKeys{},
		Now:  now,
	})

	topic := domain.TrendCandidate{Topic: "Glass skin", Platform: domain.PlatformTikTok, TrendingScore: 3}
	draft, err := asm.Assemble(context.Background(), topic)
	require.NoError(t, err)

	assert.False(t, draft.ShowOnSite)
	assert.True(t, draft.AutoGenerated)
	assert.Equal(t, now(), draft.PublishedAt)
	require.NotNil(t, draft.TrendSource)
	assert.Equal(t, domain.PlatformTikTok, draft.TrendSource.Platform)
	assert.Equal(t, "Glass skin", draft.TrendSource.TrendingTopic)
	assert.Equal(t, 3.0, draft.TrendSource.TrendingScore)

	assert.Same(t, img, draft.FeaturedImage)
	assert.Equal(t, 1, images.tracked)
	assert.Equal(t, "Glass skin", images.lastQuery)

	require.Len(t, draft.RelatedPosts, 1)
	require.Len(t, draft.RelatedArticles, 1)
	assert.Equal(t, "p1", draft.RelatedPosts[0].ID)
	assert.NotEqual(t, draft.RelatedPosts[0].Key, draft.RelatedArticles[0].Key)
	assert.NotEqual(t, "old", draft.RelatedPosts[0].Key)
}

func TestAssembleWithoutImageIsNotAnError(t *testing.T) {
	t.Parallel()

	for name, images := range map[string]*fakeImages{
		"nothing found": {},
		"search failed": {err: errBoom},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			asm := NewAssembler(AssemblerDeps{Generator: &fakeArticles{}, Images: images})

			draft, err := asm.Assemble(context.Background(), domain.TrendCandidate{Topic: "Nail wraps"})
			require.NoError(t, err)
			assert.Nil(t, draft.FeaturedImage)
			assert.Equal(t, 0, images.tracked)
		})
	}
}

func TestAssembleIgnoresTrackingAndRelatedFailures(t *testing.T) {
	t.Parallel()

	asm := NewAssembler(AssemblerDeps{
		Generator: &fakeArticles{},
		Images:    &fakeImages{img: &domain.FeaturedImage{URL: "u"}, trackErr: errBoom},
		Related:   fakeRelated{err: errBoom},
	})

	draft, err := asm.Assemble(context.Background(), domain.TrendCandidate{Topic: "Brow lamination"})
	require.NoError(t, err)
	assert.NotNil(t, draft.FeaturedImage)
	assert.Empty(t, draft.RelatedPosts)
	assert.Empty(t, draft.RelatedArticles)
}

func TestAssembleReturnsGenerationError(t *testing.T) {
	t.Parallel()

	asm := NewAssembler(AssemblerDeps{
		Generator: &fakeArticles{fail: map[string]error{"Lash lift": domain.ErrNoContent}},
	})

	_, err := asm.Assemble(context.Background(), domain.TrendCandidate{Topic: "Lash lift"})
	require.ErrorIs(t, err, domain.ErrNoContent)
}
