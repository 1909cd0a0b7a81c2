package usecase

import (
	"context"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
)

// FeaturedProductsEnricher converts legacy product links on blog posts into
// featured product cards. No model call is involved.
type FeaturedProductsEnricher struct {
	keys keys.Generator
}

var _ Enricher = (*FeaturedProductsEnricher)(nil)

// NewFeaturedProductsEnricher uses gen for item keys; nil means random keys.
func NewFeaturedProductsEnricher(gen keys.Generator) *FeaturedProductsEnricher {
	if gen == nil {
		gen = keys.UUID{}
	}
	return &FeaturedProductsEnricher{keys: gen}
}

func (e *FeaturedProductsEnricher) Name() string { return domain.JobFeaturedProducts }

func (e *FeaturedProductsEnricher) Filter() domain.MissingFilter { return domain.ProductsUnmigrated }

// Enrich ignores the summary. Posts that already have featured products, or
// have no links, yield an empty patch.
func (e *FeaturedProductsEnricher) Enrich(_ context.Context, rec domain.StoredArticle, _ string) (domain.Patch, error) {
	if len(rec.FeaturedProducts) > 0 || len(rec.ProductLinks) == 0 {
		return domain.Patch{}, nil
	}
	products := make([]domain.Product, 0, len(rec.ProductLinks))
	for _, link := range rec.ProductLinks {
		products = append(products, domain.Product{
			Key:           e.keys.NewKey(),
			Type:          domain.TypeProduct,
			ProductName:   productName(link),
			Brand:         link.Brand,
			ShopMyURL:     link.ShopMyURL,
			AmazonURL:     link.AmazonURL,
			ProductNote:   link.ProductNote,
			HasShopMyLink: linkState(link.ShopMyURL),
			HasAmazonLink: linkState(link.AmazonURL),
		})
	}
	return domain.Patch{FeaturedProducts: &products}, nil
}

func productName(link domain.ProductLink) string {
	switch {
	case link.Name != "":
		return link.Name
	case link.ProductName != "":
		return link.ProductName
	default:
		return "Product"
	}
}

func linkState(url string) string {
	if url != "" {
		return domain.LinkYes
	}
	return domain.LinkPending
}
