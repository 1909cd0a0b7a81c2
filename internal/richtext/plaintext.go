package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"BlogEngine/internal/domain"
)

// PlainText flattens blocks into text, one block per line.
func PlainText(blocks []domain.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		var line strings.Builder
		for _, s := range b.Children {
			line.WriteString(s.Text)
		}
		text := strings.TrimSpace(line.String())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// HTMLToText strips markup from an HTML body and collapses whitespace.
func HTMLToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(html)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		// nested matches are reported by their outermost ancestor
		if s.ParentsFiltered("p, li, blockquote").Length() > 0 {
			return
		}
		if t := collapse(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return collapse(doc.Text())
	}
	return strings.Join(parts, "\n")
}

// Truncate cuts s to at most limit runes. A non-positive limit returns s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// Summary builds a bounded plain-text digest of a stored record's body.
func Summary(a domain.StoredArticle, limit int) string {
	var parts []string
	if a.Excerpt != "" {
		parts = append(parts, a.Excerpt)
	}
	if body := PlainText(append(append([]domain.Block{}, a.Introduction...), a.MainContent...)); body != "" {
		parts = append(parts, body)
	}
	if a.HTMLContent != "" {
		parts = append(parts, HTMLToText(a.HTMLContent))
	}
	return Truncate(strings.Join(parts, "\n"), limit)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
