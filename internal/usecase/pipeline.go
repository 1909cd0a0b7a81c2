package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/trending"
)

// TrendFetcher collects one batch per configured trend source.
type TrendFetcher interface {
	FetchAll(ctx context.Context) []trending.Batch
}

// PipelineDeps wires all driven adapters into the generation pipeline.
type PipelineDeps struct {
	Sources    TrendFetcher
	Aggregator *trending.Aggregator
	Store      ports.ContentStore
	Assembler  *Assembler
	Notifier   ports.Notifier
	BatchSize  int
	RecentDays int
	TopicDelay time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// Pipeline implements the trend-to-draft workflow.
type Pipeline struct {
	sources    TrendFetcher
	aggregator *trending.Aggregator
	store      ports.ContentStore
	assembler  *Assembler
	notifier   ports.Notifier
	batchSize  int
	recentDays int
	topicDelay time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		sources:    deps.Sources,
		aggregator: deps.Aggregator,
		store:      deps.Store,
		assembler:  deps.Assembler,
		notifier:   deps.Notifier,
		batchSize:  deps.BatchSize,
		recentDays: deps.RecentDays,
		topicDelay: deps.TopicDelay,
		now:        deps.Now,
		logger:     deps.Logger,
	}
	if p.aggregator == nil {
		p.aggregator = trending.NewAggregator()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.recentDays <= 0 {
		p.recentDays = 30
	}
	return p
}

// Run fetches trends, selects topics, assembles and persists drafts. Per-topic
// failures are recorded in the summary and never abort the run.
func (p *Pipeline) Run(ctx context.Context) (summary domain.RunSummary) {
	summary.StartedAt = p.now()
	defer func() { summary.Finish(p.now()) }()

	if err := p.run(ctx, &summary); err != nil {
		summary.Success = false
		summary.Error = err.Error()
		p.logger.Error("generation run failed", "error", err)
		return summary
	}
	summary.Success = true
	p.logger.Info("generation run finished",
		"trends", summary.TrendsFetched,
		"relevant", summary.RelevantTrends,
		"new_topics", summary.NewTopics,
		"generated", summary.ArticlesGenerated,
		"saved", summary.ArticlesSaved)
	return summary
}

func (p *Pipeline) run(ctx context.Context, summary *domain.RunSummary) error {
	if p.store == nil || p.assembler == nil {
		return fmt.Errorf("pipeline is not fully configured")
	}

	var batches []trending.Batch
	if p.sources != nil {
		batches = p.sources.FetchAll(ctx)
	}
	summary.Sources = sourceReports(batches)
	for _, r := range summary.Sources {
		summary.TrendsFetched += r.Count
	}

	since := p.now().AddDate(0, 0, -p.recentDays)
	recent, err := p.store.RecentTitles(ctx, since)
	if err != nil {
		return fmt.Errorf("load recent titles: %w", err)
	}

	selected, stats, err := p.aggregator.Aggregate(batches, recent, p.batchSize)
	summary.RelevantTrends = stats.Fetched - stats.EmptyTopic - stats.BelowThreshold
	summary.NewTopics = summary.RelevantTrends - stats.SameTopic - stats.NearDuplicate
	if err != nil {
		return fmt.Errorf("aggregate trends: %w", err)
	}
	p.logger.Info("topics selected", "selected", len(selected), "stats", stats)
	if len(selected) == 0 {
		return nil
	}

	for i, topic := range selected {
		outcome := p.processTopic(ctx, topic)
		summary.Topics = append(summary.Topics, outcome)
		if outcome.Title != "" {
			summary.ArticlesGenerated++
		}
		if outcome.Status == domain.TopicSaved {
			summary.ArticlesSaved++
		}

		if i < len(selected)-1 {
			if err := sleep(ctx, p.topicDelay); err != nil {
				return fmt.Errorf("interrupted after %d of %d topics: %w", i+1, len(selected), err)
			}
		}
	}

	p.notify(ctx, summary)
	return nil
}

func (p *Pipeline) processTopic(ctx context.Context, topic domain.TrendCandidate) domain.TopicOutcome {
	outcome := domain.TopicOutcome{Topic: topic.Topic, Status: domain.TopicFailed}

	draft, err := p.assembler.Assemble(ctx, topic)
	if err != nil {
		outcome.Error = err.Error()
		p.logger.Warn("topic generation failed", "topic", topic.Topic, "error", err)
		return outcome
	}
	outcome.Title = draft.Title
	outcome.Slug = draft.Slug

	id, err := p.store.Create(ctx, draft)
	if err != nil {
		outcome.Error = fmt.Errorf("persist draft: %w", err).Error()
		p.logger.Warn("draft not saved", "title", logging.Title(draft.Title), "error", err)
		return outcome
	}
	outcome.ID = id
	outcome.Status = domain.TopicSaved
	p.logger.Info("draft saved", "title", logging.Title(draft.Title), "id", id)
	return outcome
}

func (p *Pipeline) notify(ctx context.Context, summary *domain.RunSummary) {
	if p.notifier == nil || summary.ArticlesSaved == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(summary.Topics)); err != nil {
		p.logger.Warn("digest not delivered", "error", err)
	}
}

func sourceReports(batches []trending.Batch) []domain.SourceReport {
	reports := make([]domain.SourceReport, 0, len(batches))
	for _, b := range batches {
		r := domain.SourceReport{Name: b.Source, Platform: string(b.Platform), Status: domain.SourceOK, Count: len(b.Trends)}
		switch {
		case errors.Is(b.Err, domain.ErrSourceDisabled):
			r.Status = domain.SourceDisabled
			r.Count = 0
		case b.Err != nil:
			r.Status = domain.SourceFailed
			r.Error = b.Err.Error()
			r.Count = 0
		}
		reports = append(reports, r)
	}
	return reports
}

func buildDigestMessage(topics []domain.TopicOutcome) string {
	var sb strings.Builder
	saved := 0
	for _, t := range topics {
		if t.Status == domain.TopicSaved {
			saved++
		}
	}
	fmt.Fprintf(&sb, "%d new draft(s) ready for review\n\n", saved)
	for _, t := range topics {
		if t.Status != domain.TopicSaved {
			continue
		}
		fmt.Fprintf(&sb, "- %s\nTrend: %s\nSlug: %s\n\n", t.Title, t.Topic, t.Slug)
	}
	return sb.String()
}
