package domain

import "time"

// Job names recorded in the run slot.
const (
	JobGenerate           = "generate"
	JobGEOMigration       = "migrate-geo"
	JobReferencesBackfill = "backfill-references"
	JobReferenceTypes     = "reference-types"
	JobBlogPostGEO        = "migrate-geo-posts"
	JobFeaturedProducts   = "migrate-products"
)

// SourceReport tells how a single trend source behaved during a run.
type SourceReport struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// Source report statuses.
const (
	SourceOK       = "ok"
	SourceFailed   = "failed"
	SourceDisabled = "disabled"
)

// TopicOutcome is the per-topic result of a generation run.
type TopicOutcome struct {
	Topic  string `json:"topic"`
	Title  string `json:"title,omitempty"`
	Slug   string `json:"slug,omitempty"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Topic outcome statuses.
const (
	TopicSaved  = "saved"
	TopicFailed = "failed"
)

// RunSummary is the result of one generation run.
type RunSummary struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	TrendsFetched     int            `json:"trendsFetched"`
	RelevantTrends    int            `json:"relevantTrends"`
	NewTopics         int            `json:"newTopics"`
	ArticlesGenerated int            `json:"articlesGenerated"`
	ArticlesSaved     int            `json:"articlesSaved"`
	Sources           []SourceReport `json:"sources,omitempty"`
	Topics            []TopicOutcome `json:"topics,omitempty"`
	StartedAt         time.Time      `json:"startedAt"`
	FinishedAt        time.Time      `json:"finishedAt"`
	Duration          string         `json:"duration"`
}

// Finish stamps the end of the run.
func (s *RunSummary) Finish(now time.Time) {
	s.FinishedAt = now
	s.Duration = now.Sub(s.StartedAt).Round(time.Millisecond).String()
}

// AggregationStats explains how many candidates each aggregation step removed.
type AggregationStats struct {
	Fetched        int `json:"fetched"`
	EmptyTopic     int `json:"emptyTopic"`
	BelowThreshold int `json:"belowThreshold"`
	SameTopic      int `json:"sameTopic"`
	NearDuplicate  int `json:"nearDuplicate"`
	Truncated      int `json:"truncated"`
	Selected       int `json:"selected"`
}
