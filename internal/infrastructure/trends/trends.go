// Package trends holds the social platform trend sources.
package trends

import (
	"math/rand/v2"
	"strings"

	"BlogEngine/internal/domain"
)

// curatedTopic is a hand-maintained trend used when a platform offers no
// public trending endpoint.
type curatedTopic struct {
	Topic string
	Tags  []string
}

var acronyms = map[string]string{"grwm": "GRWM", "spf": "SPF", "diy": "DIY"}

// formatTopic title-cases words and keeps known acronyms upper case.
func formatTopic(topic string) string {
	words := strings.Fields(strings.ToLower(topic))
	for i, w := range words {
		if a, ok := acronyms[w]; ok {
			words[i] = a
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

// uniqueByTopic drops later candidates whose topic repeats case-insensitively.
func uniqueByTopic(in []domain.TrendCandidate) []domain.TrendCandidate {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, c := range in {
		key := strings.ToLower(strings.TrimSpace(c.Topic))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// pickCurated shuffles the list and scores the first n picks from top down.
func pickCurated(list []curatedTopic, n int, top, step float64, source string, platform domain.Platform, shuffle func(int, func(int, int))) []domain.TrendCandidate {
	picked := append([]curatedTopic(nil), list...)
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if n > len(picked) {
		n = len(picked)
	}

	out := make([]domain.TrendCandidate, 0, n)
	for i, item := range picked[:n] {
		out = append(out, domain.TrendCandidate{
			Topic:         item.Topic,
			Tags:          append([]string(nil), item.Tags...),
			Platform:      platform,
			Source:        source,
			TrendingScore: top - step*float64(i),
		})
	}
	return out
}
