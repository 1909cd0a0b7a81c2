package trending

import (
	"strings"
	"unicode"
)

// DefaultKeywords is the beauty/lifestyle keyword set used for relevance scoring.
var DefaultKeywords = []string{
	"makeup", "skincare", "beauty", "cosmetics", "skin", "face", "lips", "eyes",
	"foundation", "concealer", "blush", "bronzer", "highlighter", "mascara",
	"eyeshadow", "lipstick", "skincare routine", "serum", "moisturizer", "spf",
	"sunscreen", "retinol", "vitamin c", "hyaluronic", "niacinamide", "cleanser",
	"toner", "exfoliate", "acne", "anti-aging", "glow", "dewy", "matte",
	"contour", "brow", "lash", "nail", "hair", "hairstyle", "haircare",
	"fashion", "style", "outfit", "lifestyle", "wellness", "self-care",
	"grwm", "get ready with me", "tutorial", "routine", "favorites", "drugstore",
	"luxury", "dupe", "viral", "tiktok made me buy", "holy grail", "must have",
}

// DefaultPreserveWords are short words that still carry meaning for matching.
var DefaultPreserveWords = []string{
	"men", "man", "male", "boy", "guy",
	"women", "woman", "female", "girl", "gal",
	"teen", "kid", "kids", "baby", "mom", "dad",
	"oily", "dry", "acne", "glow", "dewy", "matte",
	"lip", "eye", "brow", "lash", "nail", "hair",
	"spf", "diy", "bbw", "asmr",
}

// DefaultMinWordLength keeps words longer than three characters.
const DefaultMinWordLength = 4

// Tokenizer splits titles into significant lower-case words.
type Tokenizer struct {
	MinWordLength int
	preserve      map[string]struct{}
}

// NewTokenizer builds a tokenizer. A non-positive minimum falls back to
// DefaultMinWordLength.
func NewTokenizer(minWordLength int, preserve []string) Tokenizer {
	if minWordLength <= 0 {
		minWordLength = DefaultMinWordLength
	}
	set := make(map[string]struct{}, len(preserve))
	for _, w := range preserve {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return Tokenizer{MinWordLength: minWordLength, preserve: set}
}

// Keep reports whether a lower-cased word is significant.
func (t Tokenizer) Keep(word string) bool {
	if _, ok := t.preserve[word]; ok {
		return true
	}
	return len([]rune(word)) >= t.MinWordLength
}

// Words returns the set of significant words in text. Punctuation at the
// edges of a word is ignored.
func (t Tokenizer) Words(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range t.Keywords(text) {
		out[w] = struct{}{}
	}
	return out
}

// Keywords returns the significant words of text in order of first
// appearance, without repeats.
func (t Tokenizer) Keywords(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		w := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w == "" || !t.Keep(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
