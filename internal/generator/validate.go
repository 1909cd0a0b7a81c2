package generator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
)

var validate = validator.New()

const defaultTakeawayIcon = "✨"

type rawTakeaway struct {
	Icon  string `json:"icon"`
	Point string `json:"point" validate:"required"`
}

type rawTip struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ProTip      string `json:"proTip"`
}

type rawFAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type rawTake struct {
	Headline string `json:"headline"`
	Content  string `json:"content" validate:"required"`
	Mood     string `json:"mood"`
}

type rawReference struct {
	Title             string   `json:"title" validate:"required"`
	Publisher         string   `json:"publisher" validate:"required"`
	URL               string   `json:"url" validate:"required,http_url"`
	Note              string   `json:"note"`
	SupportedSections []string `json:"supportedSections"`
}

type rawGEO struct {
	QuickAnswer  string        `json:"quickAnswer"`
	KeyTakeaways []rawTakeaway `json:"keyTakeaways"`
	ExpertTips   []rawTip      `json:"expertTips"`
	FAQSection   []rawFAQ      `json:"faqSection"`
	KyndallsTake *rawTake      `json:"kyndallsTake"`
}

// valid reports whether v passes its validate tags.
func valid(v any) bool {
	return validate.Struct(v) == nil
}

// cleanGEO drops items missing required fields and keys the survivors.
func cleanGEO(raw rawGEO, gen keys.Generator) domain.GEOContent {
	var out domain.GEOContent
	out.QuickAnswer = strings.TrimSpace(raw.QuickAnswer)

	for _, t := range raw.KeyTakeaways {
		t.Point = strings.TrimSpace(t.Point)
		if !valid(t) {
			continue
		}
		icon := strings.TrimSpace(t.Icon)
		if icon == "" {
			icon = defaultTakeawayIcon
		}
		out.KeyTakeaways = append(out.KeyTakeaways, domain.Takeaway{
			Key: gen.NewKey(), Type: domain.TypeTakeaway, Icon: icon, Point: t.Point,
		})
	}

	for _, t := range raw.ExpertTips {
		t.Title, t.Description = strings.TrimSpace(t.Title), strings.TrimSpace(t.Description)
		if !valid(t) {
			continue
		}
		out.ExpertTips = append(out.ExpertTips, domain.ExpertTip{
			Key: gen.NewKey(), Type: domain.TypeTip, Title: t.Title, Description: t.Description,
			ProTip: strings.TrimSpace(t.ProTip),
		})
	}

	for _, f := range raw.FAQSection {
		f.Question, f.Answer = strings.TrimSpace(f.Question), strings.TrimSpace(f.Answer)
		if !valid(f) {
			continue
		}
		out.FAQSection = append(out.FAQSection, domain.FAQItem{
			Key: gen.NewKey(), Type: domain.TypeFAQItem, Question: f.Question, Answer: f.Answer,
		})
	}

	if raw.KyndallsTake != nil {
		take := *raw.KyndallsTake
		take.Content = strings.TrimSpace(take.Content)
		if valid(take) {
			headline := strings.TrimSpace(take.Headline)
			if headline == "" {
				headline = domain.DefaultTakeHeadline
			}
			out.KyndallsTake = &domain.KyndallsTake{
				Show:     true,
				Headline: headline,
				Content:  take.Content,
				Mood:     normalizeMood(take.Mood),
			}
		}
	}
	return out
}

// cleanReferences keeps references with a title, a publisher and an http(s) URL.
func cleanReferences(raw []rawReference, gen keys.Generator, accessed time.Time) []domain.Reference {
	var out []domain.Reference
	day := accessed.Format(time.DateOnly)
	for _, r := range raw {
		r.Title, r.Publisher, r.URL = strings.TrimSpace(r.Title), strings.TrimSpace(r.Publisher), strings.TrimSpace(r.URL)
		if !valid(r) {
			continue
		}
		sections := r.SupportedSections
		if sections == nil {
			sections = []string{}
		}
		out = append(out, domain.Reference{
			Key:               gen.NewKey(),
			Type:              domain.TypeSourceReference,
			Title:             r.Title,
			Publisher:         r.Publisher,
			URL:               r.URL,
			Note:              strings.TrimSpace(r.Note),
			SupportedSections: sections,
			DateAccessed:      day,
		})
	}
	return out
}

func normalizeMood(mood string) string {
	switch m := strings.ToLower(strings.TrimSpace(mood)); m {
	case domain.MoodLove, domain.MoodRecommend, domain.MoodMixed, domain.MoodCaution, domain.MoodSkip:
		return m
	default:
		return domain.MoodRecommend
	}
}

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, known := range domain.Categories {
		if c == known {
			return c
		}
	}
	return domain.DefaultCategory
}
