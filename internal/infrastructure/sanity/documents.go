package sanity

import (
	"encoding/json"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
	"BlogEngine/internal/richtext"
)

type slugField struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

type reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
	Key  string `json:"_key,omitempty"`
}

type imageField struct {
	Type  string    `json:"_type"`
	Asset reference `json:"asset"`
	Alt   string    `json:"alt,omitempty"`
}

type takeField struct {
	Show     bool           `json:"showKyndallsTake"`
	Headline string         `json:"headline"`
	Content  []domain.Block `json:"content"`
	Mood     string         `json:"mood"`
}

type creditField struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	PhotographerURL string `json:"photographerUrl"`
	UnsplashURL     string `json:"unsplashUrl"`
	Source          string `json:"source"`
}

// articleDocument is the shape written on create.
type articleDocument struct {
	ID               string              `json:"_id"`
	Type             string              `json:"_type"`
	Title            string              `json:"title"`
	Slug             slugField           `json:"slug"`
	ShowOnSite       bool                `json:"showOnSite"`
	Category         string              `json:"category"`
	Excerpt          string              `json:"excerpt"`
	FeaturedImage    *imageField         `json:"featuredImage,omitempty"`
	Introduction     []domain.Block      `json:"introduction"`
	MainContent      []domain.Block      `json:"mainContent"`
	QuickAnswer      string              `json:"quickAnswer,omitempty"`
	KeyTakeaways     []domain.Takeaway   `json:"keyTakeaways"`
	ExpertTips       []domain.ExpertTip  `json:"expertTips"`
	FAQSection       []domain.FAQItem    `json:"faqSection"`
	KyndallsTake     *takeField          `json:"kyndallsTake,omitempty"`
	References       []domain.Reference  `json:"references,omitempty"`
	SEOTitle         string              `json:"seoTitle"`
	SEODescription   string              `json:"seoDescription"`
	Keywords         []string            `json:"keywords"`
	RelatedBlogPosts []reference         `json:"relatedBlogPosts"`
	RelatedArticles  []reference         `json:"relatedArticles"`
	TrendSource      *domain.TrendSource `json:"trendSource,omitempty"`
	ImageCredit      *creditField        `json:"imageCredit,omitempty"`
	ImageAttribution string              `json:"imageAttribution,omitempty"`
	AutoGenerated    bool                `json:"autoGenerated"`
	PublishedAt      string              `json:"publishedAt"`
}

func newArticleDocument(id string, d domain.ArticleDraft, assetRef string, gen keys.Generator) articleDocument {
	doc := articleDocument{
		ID:               id,
		Type:             domain.KindArticle,
		Title:            d.Title,
		Slug:             slugField{Type: "slug", Current: d.Slug},
		ShowOnSite:       false,
		Category:         d.Category,
		Excerpt:          d.Excerpt,
		Introduction:     nonNil(d.Introduction),
		MainContent:      nonNil(d.MainContent),
		QuickAnswer:      d.QuickAnswer,
		KeyTakeaways:     nonNil(d.KeyTakeaways),
		ExpertTips:       nonNil(d.ExpertTips),
		FAQSection:       nonNil(d.FAQSection),
		References:       d.References,
		SEOTitle:         firstNonEmpty(d.SEO.Title, d.Title),
		SEODescription:   firstNonEmpty(d.SEO.Description, d.Excerpt),
		Keywords:         nonNil(d.SEO.Keywords),
		RelatedBlogPosts: toReferences(d.RelatedPosts, gen),
		RelatedArticles:  toReferences(d.RelatedArticles, gen),
		TrendSource:      d.TrendSource,
		AutoGenerated:    d.AutoGenerated,
		PublishedAt:      d.PublishedAt.UTC().Format(time.RFC3339),
	}
	if take := d.KyndallsTake; take != nil {
		doc.KyndallsTake = &takeField{
			Show:     take.Show,
			Headline: firstNonEmpty(take.Headline, domain.DefaultTakeHeadline),
			Content:  richtext.Paragraphs(take.Content, gen),
			Mood:     firstNonEmpty(take.Mood, domain.MoodRecommend),
		}
	}
	if img := d.FeaturedImage; img != nil {
		if assetRef != "" {
			doc.FeaturedImage = &imageField{
				Type:  "image",
				Asset: reference{Type: "reference", Ref: assetRef},
				Alt:   img.Alt,
			}
		}
		// attribution is kept even when the upload failed
		doc.ImageCredit = &creditField{
			Name:            img.Credit.Name,
			Username:        img.Credit.Username,
			PhotographerURL: img.Credit.PhotographerURL,
			UnsplashURL:     img.Credit.SourceURL,
			Source:          "Unsplash",
		}
		doc.ImageAttribution = img.AttributionHTML
	}
	return doc
}

func toReferences(refs []domain.ContentRef, gen keys.Generator) []reference {
	out := make([]reference, 0, len(refs))
	for _, r := range refs {
		key := r.Key
		if key == "" {
			key = gen.NewKey()
		}
		out = append(out, reference{Type: "reference", Ref: r.ID, Key: key})
	}
	return out
}

// storedDocument is the projection read back by queries. Articles carry
// their body in introduction and mainContent; blog posts use htmlContent or a
// content field that is either legacy HTML or rich-text blocks.
type storedDocument struct {
	ID               string               `json:"_id"`
	Type             string               `json:"_type"`
	Title            string               `json:"title"`
	Slug             string               `json:"slug"`
	Category         string               `json:"category"`
	Excerpt          string               `json:"excerpt"`
	ShowOnSite       bool                 `json:"showOnSite"`
	PublishedAt      string               `json:"publishedAt"`
	Introduction     []domain.Block       `json:"introduction"`
	MainContent      []domain.Block       `json:"mainContent"`
	HTMLContent      string               `json:"htmlContent"`
	Content          json.RawMessage      `json:"content"`
	QuickAnswer      string               `json:"quickAnswer"`
	KeyTakeaways     []domain.Takeaway    `json:"keyTakeaways"`
	ExpertTips       []domain.ExpertTip   `json:"expertTips"`
	FAQSection       []domain.FAQItem     `json:"faqSection"`
	KyndallsTake     *storedTake          `json:"kyndallsTake"`
	References       []domain.Reference   `json:"references"`
	ProductLinks     []domain.ProductLink `json:"productLinks"`
	FeaturedProducts []domain.Product     `json:"featuredProducts"`
}

type storedTake struct {
	Show     bool            `json:"showKyndallsTake"`
	Headline string          `json:"headline"`
	Content  json.RawMessage `json:"content"`
	Mood     string          `json:"mood"`
}

const projection = `{
	_id, _type, title, "slug": slug.current, category, excerpt, showOnSite, publishedAt,
	introduction, mainContent, htmlContent, content, quickAnswer, keyTakeaways, expertTips, faqSection,
	kyndallsTake, references, productLinks, featuredProducts
}`

func (s storedDocument) toArticle() domain.StoredArticle {
	a := domain.StoredArticle{
		ID:          s.ID,
		Kind:        s.Type,
		HTMLContent: s.HTMLContent,
		ArticleDraft: domain.ArticleDraft{
			Title:            s.Title,
			Slug:             s.Slug,
			Category:         s.Category,
			Excerpt:          s.Excerpt,
			Introduction:     s.Introduction,
			MainContent:      s.MainContent,
			References:       s.References,
			ProductLinks:     s.ProductLinks,
			FeaturedProducts: s.FeaturedProducts,
			ShowOnSite:       s.ShowOnSite,
			PublishedAt:      parseTime(s.PublishedAt),
		},
	}
	if html, blocks := contentBody(s.Content); a.HTMLContent == "" && html != "" {
		a.HTMLContent = html
	} else if len(a.MainContent) == 0 && len(blocks) > 0 {
		a.MainContent = blocks
	}
	a.QuickAnswer = s.QuickAnswer
	a.KeyTakeaways = s.KeyTakeaways
	a.ExpertTips = s.ExpertTips
	a.FAQSection = s.FAQSection
	if t := s.KyndallsTake; t != nil {
		a.KyndallsTake = &domain.KyndallsTake{
			Show:     t.Show,
			Headline: t.Headline,
			Content:  takeText(t.Content),
			Mood:     t.Mood,
		}
	}
	return a
}

// contentBody splits the content field into legacy HTML or rich-text blocks.
func contentBody(raw json.RawMessage) (string, []domain.Block) {
	if len(raw) == 0 {
		return "", nil
	}
	var html string
	if err := json.Unmarshal(raw, &html); err == nil {
		return html, nil
	}
	var blocks []domain.Block
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return "", blocks
	}
	return "", nil
}

// takeText accepts both the block array written on create and the plain
// string written by GEO patches.
func takeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var blocks []domain.Block
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return richtext.PlainText(blocks)
	}
	return ""
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
