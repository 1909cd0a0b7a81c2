package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
)

func newTestPipeline(fetcher TrendFetcher, store *memoryStore, articles *fakeArticles, notifier *recordingNotifier) *Pipeline {
	deps := PipelineDeps{
		Sources:   fetcher,
		Store:     store,
		Assembler: NewAssembler(AssemblerDeps{Generator: articles, Keys: &sequenceKeys{}}),
		BatchSize: 5,
		Now:       fixedClock(),
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewPipeline(deps)
}

func mixedBatches() staticFetcher {
	return staticFetcher{
		{
			Source:   "tiktok",
			Platform: domain.PlatformTikTok,
			Trends: []domain.TrendCandidate{
				{Topic: "Lash lift"},
				{Topic: "Retinol serum"},
				{Topic: "Cat videos"},
			},
		},
		{Source: "youtube", Platform: domain.PlatformYouTube, Err: errBoom},
		{Source: "instagram", Platform: domain.PlatformInstagram, Err: domain.ErrSourceDisabled},
	}
}

func TestPipelineRunRecordsPerTopicOutcomes(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	articles := &fakeArticles{fail: map[string]error{"Lash lift": domain.ErrNoContent}}
	notifier := &recordingNotifier{}
	p := newTestPipeline(mixedBatches(), store, articles, notifier)

	summary := p.Run(context.Background())

	require.True(t, summary.Success, summary.Error)
	assert.Equal(t, 3, summary.TrendsFetched)
	assert.Equal(t, 2, summary.RelevantTrends)
	assert.Equal(t, 2, summary.NewTopics)
	assert.Equal(t, 1, summary.ArticlesGenerated)
	assert.Equal(t, 1, summary.ArticlesSaved)
	assert.NotEmpty(t, summary.Duration)

	require.Len(t, summary.Sources, 3)
	assert.Equal(t, domain.SourceOK, summary.Sources[0].Status)
	assert.Equal(t, domain.SourceFailed, summary.Sources[1].Status)
	assert.Equal(t, "boom", summary.Sources[1].Error)
	assert.Equal(t, domain.SourceDisabled, summary.Sources[2].Status)

	// higher relevance goes first
	assert.Equal(t, []string{"Retinol serum", "Lash lift"}, articles.calls)
	require.Len(t, summary.Topics, 2)
	assert.Equal(t, domain.TopicSaved, summary.Topics[0].Status)
	assert.Equal(t, "doc-1", summary.Topics[0].ID)
	assert.Equal(t, domain.TopicFailed, summary.Topics[1].Status)
	assert.Contains(t, summary.Topics[1].Error, "no usable content")

	require.Equal(t, 1, store.len())
	saved := store.get("doc-1")
	assert.False(t, saved.ShowOnSite)
	assert.True(t, saved.AutoGenerated)

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "1 new draft(s)")
	assert.Contains(t, notifier.digests[0], "All About Retinol serum")
}

func TestPipelineRunFailsWhenEverySourceFails(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	notifier := &recordingNotifier{}
	fetcher := staticFetcher{
		{Source: "tiktok", Err: errBoom},
		{Source: "youtube", Err: errBoom},
		{Source: "instagram", Err: domain.ErrSourceDisabled},
	}
	p := newTestPipeline(fetcher, store, &fakeArticles{}, notifier)

	summary := p.Run(context.Background())

	assert.False(t, summary.Success)
	assert.Contains(t, summary.Error, domain.ErrAllSourcesFailed.Error())
	assert.Zero(t, store.len())
	assert.Empty(t, notifier.digests)
}

func TestPipelineRunSkipsTopicsCoveredRecently(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.recent = []string{"Retinol Serum Guide For Beginners", "Lash Lift At Home"}
	articles := &fakeArticles{}
	notifier := &recordingNotifier{}
	p := newTestPipeline(mixedBatches(), store, articles, notifier)

	summary := p.Run(context.Background())

	require.True(t, summary.Success)
	assert.Equal(t, 2, summary.RelevantTrends)
	assert.Zero(t, summary.NewTopics)
	assert.Empty(t, articles.calls)
	assert.Empty(t, notifier.digests)
}

func TestPipelineRunFailsWhenRecentTitlesUnavailable(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.recentErr = errBoom
	articles := &fakeArticles{}
	p := newTestPipeline(mixedBatches(), store, articles, nil)

	summary := p.Run(context.Background())

	assert.False(t, summary.Success)
	assert.Contains(t, summary.Error, "load recent titles")
	assert.Empty(t, articles.calls)
}

func TestPipelineRunCountsUnsavedDrafts(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.createErr = errBoom
	notifier := &recordingNotifier{}
	p := newTestPipeline(mixedBatches(), store, &fakeArticles{}, notifier)

	summary := p.Run(context.Background())

	require.True(t, summary.Success)
	assert.Equal(t, 2, summary.ArticlesGenerated)
	assert.Zero(t, summary.ArticlesSaved)
	for _, topic := range summary.Topics {
		assert.Equal(t, domain.TopicFailed, topic.Status)
		assert.Contains(t, topic.Error, "persist draft")
	}
	assert.Empty(t, notifier.digests)
}

func TestPipelineRunWithoutSourcesIsEmptySuccess(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(staticFetcher(nil), newMemoryStore(), &fakeArticles{}, nil)

	summary := p.Run(context.Background())

	assert.True(t, summary.Success)
	assert.Zero(t, summary.TrendsFetched)
	assert.Empty(t, summary.Topics)
}

func TestPipelineRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := staticFetcher{{
		Source: "tiktok",
		Trends: []domain.TrendCandidate{{Topic: "Retinol serum"}, {Topic: "Lash lift"}},
	}}
	articles := &fakeArticles{}
	p := newTestPipeline(fetcher, newMemoryStore(), articles, nil)

	summary := p.Run(ctx)

	assert.False(t, summary.Success)
	assert.Contains(t, summary.Error, "interrupted after 1 of 2 topics")
	assert.Len(t, articles.calls, 1)
}

func TestBuildDigestMessageListsSavedTopicsOnly(t *testing.T) {
	t.Parallel()

	msg := buildDigestMessage([]domain.TopicOutcome{
		{Topic: "Glass skin", Title: "Glass Skin 101", Slug: "glass-skin-101", Status: domain.TopicSaved},
		{Topic: "Nail wraps", Status: domain.TopicFailed, Error: "boom"},
	})

	assert.Contains(t, msg, "1 new draft(s)")
	assert.Contains(t, msg, "Glass Skin 101")
	assert.Contains(t, msg, "glass-skin-101")
	assert.NotContains(t, msg, "Nail wraps")
}
