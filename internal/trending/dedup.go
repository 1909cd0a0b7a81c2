package trending

// DefaultDuplicateThreshold is the overlap ratio at which a topic counts as covered.
const DefaultDuplicateThreshold = 0.7

// Deduplicator flags topics that were already written about recently.
type Deduplicator struct {
	tokenizer Tokenizer
	threshold float64
	recent    []map[string]struct{}
}

// NewDeduplicator tokenizes the recent titles once. A non-positive threshold
// falls back to DefaultDuplicateThreshold.
func NewDeduplicator(tokenizer Tokenizer, threshold float64, recentTitles []string) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	recent := make([]map[string]struct{}, 0, len(recentTitles))
	for _, title := range recentTitles {
		recent = append(recent, tokenizer.Words(title))
	}
	return &Deduplicator{tokenizer: tokenizer, threshold: threshold, recent: recent}
}

// IsDuplicate reports whether topic overlaps any recent title enough.
func (d *Deduplicator) IsDuplicate(topic string) bool {
	words := d.tokenizer.Words(topic)
	for _, recent := range d.recent {
		if Overlap(words, recent) >= d.threshold {
			return true
		}
	}
	return false
}

// Filter keeps the topics that are not duplicates, preserving order.
func (d *Deduplicator) Filter(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if !d.IsDuplicate(t) {
			out = append(out, t)
		}
	}
	return out
}

// Overlap is |a∩b| / min(|a|,|b|). Either side empty yields 0.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}
