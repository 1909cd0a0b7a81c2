package trending

import (
	"math"
	"strings"

	"BlogEngine/internal/domain"
)

var stepScores = [...]float64{0, 0.15, 0.30, 0.45, 0.60}

// Score rates how relevant a candidate is for the keyword set. Each keyword
// found in the candidate's text adds its word count to the weight; the weight
// maps onto a stepped score in [0,1].
func Score(c domain.TrendCandidate, keywords []string) float64 {
	parts := make([]string, 0, 3+len(c.Tags))
	for _, s := range append([]string{c.Topic, c.Title, c.Description}, c.Tags...) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))
	if text == "" {
		return 0
	}

	weight := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			weight += len(strings.Fields(kw))
		}
	}
	return ScoreForWeight(weight)
}

// ScoreForWeight maps a keyword weight onto the stepped scale.
func ScoreForWeight(weight int) float64 {
	if weight <= 0 {
		return 0
	}
	if weight < len(stepScores) {
		return stepScores[weight]
	}
	s := 0.60 + 0.10*float64(weight-4)
	// keep one decimal exact so 5 -> 0.7 rather than 0.7000000000000001
	return math.Min(1, math.Round(s*100)/100)
}
