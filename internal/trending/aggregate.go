package trending

import (
	"errors"
	"sort"
	"strings"

	"BlogEngine/internal/domain"
)

// Defaults for the aggregation step.
const (
	DefaultMinRelevance = 0.1
	DefaultBatchSize    = 5
)

// Batch is what one trend source returned for a run.
type Batch struct {
	Source   string
	Platform domain.Platform
	Trends   []domain.TrendCandidate
	Err      error
}

// Disabled reports whether the source was skipped for missing configuration.
func (b Batch) Disabled() bool {
	return errors.Is(b.Err, domain.ErrSourceDisabled)
}

// Aggregator merges trend batches into the topics worth writing about.
type Aggregator struct {
	Keywords     []string
	MinRelevance float64
	Tokenizer    Tokenizer
	Threshold    float64
}

// NewAggregator returns an aggregator with the default keyword set and thresholds.
func NewAggregator() *Aggregator {
	return &Aggregator{
		Keywords:     DefaultKeywords,
		MinRelevance: DefaultMinRelevance,
		Tokenizer:    NewTokenizer(DefaultMinWordLength, DefaultPreserveWords),
		Threshold:    DefaultDuplicateThreshold,
	}
}

// Aggregate tags, scores, filters, ranks and deduplicates candidates, then
// truncates to batchSize. It fails only when every enabled source failed.
func (a *Aggregator) Aggregate(batches []Batch, recentTitles []string, batchSize int) ([]domain.TrendCandidate, domain.AggregationStats, error) {
	var stats domain.AggregationStats
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	enabled, failed := 0, 0
	var candidates []domain.TrendCandidate
	for _, b := range batches {
		if b.Disabled() {
			continue
		}
		enabled++
		if b.Err != nil {
			failed++
			continue
		}
		for _, c := range b.Trends {
			stats.Fetched++
			if c.Platform == "" {
				c.Platform = b.Platform
			}
			if c.Source == "" {
				c.Source = b.Source
			}
			if !c.Normalize() {
				stats.EmptyTopic++
				continue
			}
			c.RelevanceScore = Score(c, a.Keywords)
			if c.RelevanceScore < a.MinRelevance {
				stats.BelowThreshold++
				continue
			}
			candidates = append(candidates, c)
		}
	}
	if enabled > 0 && failed == enabled {
		return nil, stats, domain.ErrAllSourcesFailed
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rank() > candidates[j].Rank()
	})

	seen := make(map[string]struct{}, len(candidates))
	dedup := NewDeduplicator(a.Tokenizer, a.Threshold, recentTitles)
	selected := make([]domain.TrendCandidate, 0, batchSize)
	for _, c := range candidates {
		id := strings.ToLower(c.Topic)
		if _, ok := seen[id]; ok {
			stats.SameTopic++
			continue
		}
		seen[id] = struct{}{}
		if dedup.IsDuplicate(c.Topic) {
			stats.NearDuplicate++
			continue
		}
		if len(selected) == batchSize {
			stats.Truncated++
			continue
		}
		selected = append(selected, c)
	}
	stats.Selected = len(selected)
	return selected, stats, nil
}
