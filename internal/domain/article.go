package domain

import (
	"strings"
	"time"
)

// Sub-item discriminators expected by the content store.
const (
	TypeBlock           = "block"
	TypeSpan            = "span"
	TypeTakeaway        = "takeaway"
	TypeTip             = "tip"
	TypeFAQItem         = "faqItem"
	TypeReference       = "reference"
	TypeSourceReference = "sourceReference"
	TypeProduct         = "product"
)

// Document kinds held by the content store.
const (
	KindArticle  = "article"
	KindBlogPost = "blogPost"
)

// Mood values allowed for the personal take.
const (
	MoodLove      = "love"
	MoodRecommend = "recommend"
	MoodMixed     = "mixed"
	MoodCaution   = "caution"
	MoodSkip      = "skip"
)

// DefaultTakeHeadline is used when the generator omits a headline.
const DefaultTakeHeadline = "Kyndall's Take"

// Span is an inline run of text inside a Block.
type Span struct {
	Key   string   `json:"_key"`
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// Block is one rich-text paragraph, heading or list item.
type Block struct {
	Key      string   `json:"_key"`
	Type     string   `json:"_type"`
	Style    string   `json:"style"`
	ListItem string   `json:"listItem,omitempty"`
	Level    int      `json:"level,omitempty"`
	Children []Span   `json:"children"`
	MarkDefs []string `json:"markDefs"`
}

type Takeaway struct {
	Key   string `json:"_key"`
	Type  string `json:"_type"`
	Icon  string `json:"icon"`
	Point string `json:"point"`
}

type ExpertTip struct {
	Key         string `json:"_key"`
	Type        string `json:"_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProTip      string `json:"proTip,omitempty"`
}

type FAQItem struct {
	Key      string `json:"_key"`
	Type     string `json:"_type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// KyndallsTake is the personal-voice section of an article.
type KyndallsTake struct {
	Show     bool   `json:"showKyndallsTake,omitempty"`
	Headline string `json:"headline"`
	Content  string `json:"content"`
	Mood     string `json:"mood"`
}

// Reference is a citation supporting claims in the article.
type Reference struct {
	Key               string   `json:"_key"`
	Type              string   `json:"_type"`
	Title             string   `json:"title"`
	Publisher         string   `json:"publisher"`
	URL               string   `json:"url"`
	Note              string   `json:"note,omitempty"`
	SupportedSections []string `json:"supportedSections"`
	DateAccessed      string   `json:"dateAccessed"`
}

// ProductLink is the legacy product entry found on older blog posts.
type ProductLink struct {
	Name        string `json:"name,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Brand       string `json:"brand,omitempty"`
	ShopMyURL   string `json:"shopmyUrl,omitempty"`
	AmazonURL   string `json:"amazonUrl,omitempty"`
	ProductNote string `json:"productNote,omitempty"`
}

// Shop link states on a featured product.
const (
	LinkYes     = "yes"
	LinkPending = "pending"
)

// Product is a featured product card on a blog post.
type Product struct {
	Key           string `json:"_key"`
	Type          string `json:"_type"`
	ProductName   string `json:"productName"`
	Brand         string `json:"brand,omitempty"`
	ShopMyURL     string `json:"shopmyUrl,omitempty"`
	AmazonURL     string `json:"amazonUrl,omitempty"`
	ProductNote   string `json:"productNote,omitempty"`
	HasShopMyLink string `json:"hasShopMyLink"`
	HasAmazonLink string `json:"hasAmazonLink"`
}

// ImageCredit carries the photographer attribution required by the image provider.
type ImageCredit struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	PhotographerURL string `json:"photographerUrl"`
	SourceURL       string `json:"unsplashUrl"`
	Source          string `json:"source"`
}

// FeaturedImage is the stock photo attached to a draft.
type FeaturedImage struct {
	URL              string      `json:"url"`
	ThumbnailURL     string      `json:"thumbnailUrl,omitempty"`
	Alt              string      `json:"alt"`
	Credit           ImageCredit `json:"credit"`
	AttributionHTML  string      `json:"attributionHtml,omitempty"`
	AttributionText  string      `json:"attributionText,omitempty"`
	DownloadLocation string      `json:"-"`
	AssetRef         string      `json:"assetRef,omitempty"`
}

// ContentRef links to another stored document.
type ContentRef struct {
	Key      string `json:"_key"`
	ID       string `json:"_ref"`
	Title    string `json:"-"`
	Slug     string `json:"-"`
	Category string `json:"-"`
}

// SEO groups search metadata.
type SEO struct {
	Title       string   `json:"seoTitle"`
	Description string   `json:"seoDescription"`
	Keywords    []string `json:"keywords"`
}

// GEOContent is the set of fields aimed at AI search extraction.
type GEOContent struct {
	QuickAnswer  string        `json:"quickAnswer,omitempty"`
	KeyTakeaways []Takeaway    `json:"keyTakeaways,omitempty"`
	ExpertTips   []ExpertTip   `json:"expertTips,omitempty"`
	FAQSection   []FAQItem     `json:"faqSection,omitempty"`
	KyndallsTake *KyndallsTake `json:"kyndallsTake,omitempty"`
}

// Empty reports whether nothing usable was produced.
func (g GEOContent) Empty() bool {
	return g.QuickAnswer == "" && len(g.KeyTakeaways) == 0 && len(g.ExpertTips) == 0 &&
		len(g.FAQSection) == 0 && g.KyndallsTake == nil
}

// ArticleDraft is the unit written to the content store. JSON names match
// the stored document fields.
type ArticleDraft struct {
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Category     string  `json:"category"`
	Excerpt      string  `json:"excerpt"`
	Introduction []Block `json:"introduction,omitempty"`
	MainContent  []Block `json:"mainContent,omitempty"`
	GEOContent
	References       []Reference    `json:"references,omitempty"`
	SEO              SEO            `json:"seo"`
	FeaturedImage    *FeaturedImage `json:"featuredImage,omitempty"`
	RelatedPosts     []ContentRef   `json:"relatedPosts,omitempty"`
	RelatedArticles  []ContentRef   `json:"relatedArticles,omitempty"`
	TrendSource      *TrendSource   `json:"trendSource,omitempty"`
	ProductLinks     []ProductLink  `json:"productLinks,omitempty"`
	FeaturedProducts []Product      `json:"featuredProducts,omitempty"`
	ShowOnSite       bool           `json:"showOnSite"`
	AutoGenerated    bool           `json:"autoGenerated"`
	PublishedAt      time.Time      `json:"publishedAt"`
}

// ProductNames lists "brand name" labels, preferring featured products over
// legacy links.
func (d ArticleDraft) ProductNames() []string {
	var out []string
	add := func(brand, name string) {
		if label := strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(name)); label != "" {
			out = append(out, label)
		}
	}
	if len(d.FeaturedProducts) > 0 {
		for _, p := range d.FeaturedProducts {
			add(p.Brand, p.ProductName)
		}
		return out
	}
	for _, p := range d.ProductLinks {
		add(p.Brand, firstNonEmpty(p.ProductName, p.Name))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// StoredArticle is a persisted document as read back from the store.
type StoredArticle struct {
	ID          string `json:"_id"`
	Kind        string `json:"_type"`
	HTMLContent string `json:"htmlContent,omitempty"`
	ArticleDraft
}

// EnrichmentInput is what the generators see of an existing record.
type EnrichmentInput struct {
	Title       string
	Category    string
	Excerpt     string
	QuickAnswer string
	Summary     string
	Questions   []string
	Products    []string
}

// Categories accepted for drafts.
var Categories = []string{"makeup", "skincare", "nails", "hair", "fashion", "lifestyle", "trending"}

// DefaultCategory is used when the generator proposes an unknown category.
const DefaultCategory = "lifestyle"
