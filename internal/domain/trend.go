package domain

import (
	"strings"
	"time"
)

// Platform identifies the social network a trend was observed on.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// TrendCandidate is a topic reported by a trend source. It lives for one
// aggregation run and is never persisted.
type TrendCandidate struct {
	Topic          string
	Title          string
	Description    string
	Tags           []string
	Platform       Platform
	Source         string
	TrendingScore  float64
	RelevanceScore float64
}

// Normalize collapses whitespace in the topic and applies the default
// trending score. It reports false when the topic is empty afterwards.
func (t *TrendCandidate) Normalize() bool {
	t.Topic = strings.Join(strings.Fields(t.Topic), " ")
	if t.Topic == "" {
		return false
	}
	if t.TrendingScore <= 0 {
		t.TrendingScore = 1
	}
	return true
}

// Rank is the ordering key used by the aggregator.
func (t TrendCandidate) Rank() float64 {
	return t.RelevanceScore * t.TrendingScore
}

// TrendSource records where the article idea came from.
type TrendSource struct {
	Platform      Platform  `json:"platform"`
	TrendingTopic string    `json:"trendingTopic"`
	TrendingScore float64   `json:"trendingScore,omitempty"`
	DetectedAt    time.Time `json:"detectedAt"`
}
