package generator

import (
	"fmt"
	"strings"

	"BlogEngine/internal/domain"
)

const voice = `Write for Kyndall Ames, a Los Angeles beauty creator known for honest, specific advice.
Casual and warm, like a friend who happens to be an expert. No filler.`

func articlePrompt(topic domain.TrendCandidate) string {
	tags := "none"
	if len(topic.Tags) > 0 {
		tags = strings.Join(topic.Tags, ", ")
	}
	return fmt.Sprintf(`%s

TOPIC: %s
TRENDING ON: %s
RELATED TAGS: %s
CATEGORIES: %s

Draft a complete, well-structured article. The introduction and content fields are markdown;
use "## " headers for 4-6 sections in content. Keep claims specific and extractable by AI search engines.

Respond with ONLY one JSON object:
{
  "title": "50-60 chars",
  "category": "one of the categories above",
  "excerpt": "150-200 chars",
  "introduction": "markdown, 2-3 paragraphs",
  "content": "markdown, 800-1200 words",
  "seoTitle": "50-60 chars",
  "seoDescription": "150-160 chars",
  "keywords": ["..."],
  "quickAnswer": "2-3 sentence TL;DR, 150-300 chars",
  "keyTakeaways": [{"icon": "emoji", "point": "one sentence"}],
  "expertTips": [{"title": "...", "description": "...", "proTip": "... or null"}],
  "faqSection": [{"question": "...", "answer": "2-3 sentences"}],
  "kyndallsTake": {"headline": "...", "content": "first person, 2-3 paragraphs", "mood": "love|recommend|mixed|caution|skip"},
  "references": [{"title": "...", "publisher": "...", "url": "https://...", "note": "...", "supportedSections": ["..."]}]
}`, voice, topic.Topic, topic.Platform, tags, strings.Join(domain.Categories, ", "))
}

func geoPrompt(in domain.EnrichmentInput) string {
	return fmt.Sprintf(`%s

Generate GEO (generative engine optimization) components for an existing article.

ARTICLE TITLE: %s
CATEGORY: %s
EXCERPT: %s
PRODUCTS MENTIONED: %s

ARTICLE CONTENT:
%s

Respond with ONLY one JSON object:
{
  "quickAnswer": "2-3 sentence TL;DR, 150-300 chars",
  "keyTakeaways": [{"icon": "emoji", "point": "specific, actionable"}],
  "expertTips": [{"title": "...", "description": "2-3 sentences", "proTip": "... or null"}],
  "faqSection": [{"question": "...", "answer": "2-3 sentences"}],
  "kyndallsTake": {"headline": "...", "content": "first person, 2-3 sentences", "mood": "recommend"}
}`, voice, in.Title, orDefault(in.Category, domain.DefaultCategory), orDefault(in.Excerpt, "No excerpt"),
		orDefault(strings.Join(in.Products, ", "), "None specified"), in.Summary)
}

func referencesPrompt(in domain.EnrichmentInput) string {
	questions := make([]string, 0, len(in.Questions))
	for _, q := range in.Questions {
		questions = append(questions, "Q: "+q)
	}
	return fmt.Sprintf(`You are a research assistant finding authoritative references for a beauty/lifestyle article.

ARTICLE TITLE: %s
CATEGORY: %s
EXCERPT: %s
QUICK ANSWER: %s

CONTENT SUMMARY:
%s

FAQ QUESTIONS:
%s

Find 3-5 real references supporting claims in this article. Only cite sources you are certain exist.
Prefer PubMed, NIH, FDA and the AAD, then established health publishers, then major beauty magazines.
Never cite forums, social networks, affiliate sites or Wikipedia. Fewer verified sources beat more guesses.

Respond with ONLY one JSON object:
{
  "references": [
    {"title": "...", "publisher": "...", "url": "https://...", "note": "Supports the claim about ...", "supportedSections": ["Quick Answer"]}
  ]
}`, in.Title, orDefault(in.Category, "beauty"), in.Excerpt, in.QuickAnswer, in.Summary, strings.Join(questions, "\n"))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
