package domain

// Field names used by patches and the "missing" queries.
const (
	FieldQuickAnswer  = "quickAnswer"
	FieldKeyTakeaways = "keyTakeaways"
	FieldExpertTips   = "expertTips"
	FieldFAQSection   = "faqSection"
	FieldKyndallsTake = "kyndallsTake"
	FieldReferences   = "references"

	FieldProductLinks     = "productLinks"
	FieldFeaturedProducts = "featuredProducts"
)

// Patch is a partial update of a stored record. A nil field is left untouched;
// a non-nil field replaces the stored value.
type Patch struct {
	QuickAnswer  *string
	KeyTakeaways *[]Takeaway
	ExpertTips   *[]ExpertTip
	FAQSection   *[]FAQItem
	KyndallsTake *KyndallsTake
	References   *[]Reference

	FeaturedProducts *[]Product
}

// Fields lists the set fields in a stable order.
func (p Patch) Fields() []string {
	var out []string
	if p.QuickAnswer != nil {
		out = append(out, FieldQuickAnswer)
	}
	if p.KeyTakeaways != nil {
		out = append(out, FieldKeyTakeaways)
	}
	if p.ExpertTips != nil {
		out = append(out, FieldExpertTips)
	}
	if p.FAQSection != nil {
		out = append(out, FieldFAQSection)
	}
	if p.KyndallsTake != nil {
		out = append(out, FieldKyndallsTake)
	}
	if p.References != nil {
		out = append(out, FieldReferences)
	}
	if p.FeaturedProducts != nil {
		out = append(out, FieldFeaturedProducts)
	}
	return out
}

// IsEmpty reports whether no field is set.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Items counts array items carried by the patch.
func (p Patch) Items() int {
	n := 0
	if p.KeyTakeaways != nil {
		n += len(*p.KeyTakeaways)
	}
	if p.ExpertTips != nil {
		n += len(*p.ExpertTips)
	}
	if p.FAQSection != nil {
		n += len(*p.FAQSection)
	}
	if p.References != nil {
		n += len(*p.References)
	}
	if p.FeaturedProducts != nil {
		n += len(*p.FeaturedProducts)
	}
	return n
}

// Apply copies the set fields onto the draft.
func (p Patch) Apply(d *ArticleDraft) {
	if d == nil {
		return
	}
	if p.QuickAnswer != nil {
		d.QuickAnswer = *p.QuickAnswer
	}
	if p.KeyTakeaways != nil {
		d.KeyTakeaways = *p.KeyTakeaways
	}
	if p.ExpertTips != nil {
		d.ExpertTips = *p.ExpertTips
	}
	if p.FAQSection != nil {
		d.FAQSection = *p.FAQSection
	}
	if p.KyndallsTake != nil {
		take := *p.KyndallsTake
		d.KyndallsTake = &take
	}
	if p.References != nil {
		d.References = *p.References
	}
	if p.FeaturedProducts != nil {
		d.FeaturedProducts = *p.FeaturedProducts
	}
}

// Values returns the set fields keyed by their stored names, ready for a
// document merge.
func (p Patch) Values() map[string]any {
	out := make(map[string]any, 7)
	if p.QuickAnswer != nil {
		out[FieldQuickAnswer] = *p.QuickAnswer
	}
	if p.KeyTakeaways != nil {
		out[FieldKeyTakeaways] = *p.KeyTakeaways
	}
	if p.ExpertTips != nil {
		out[FieldExpertTips] = *p.ExpertTips
	}
	if p.FAQSection != nil {
		out[FieldFAQSection] = *p.FAQSection
	}
	if p.KyndallsTake != nil {
		out[FieldKyndallsTake] = *p.KyndallsTake
	}
	if p.References != nil {
		out[FieldReferences] = *p.References
	}
	if p.FeaturedProducts != nil {
		out[FieldFeaturedProducts] = *p.FeaturedProducts
	}
	return out
}

// MissingFilter selects records of one kind lacking a field-set. A record
// matches when any AnyEmpty field is empty and every AllPresent field is set.
// An empty Kind means articles.
type MissingFilter struct {
	Kind       string
	AnyEmpty   []string
	AllPresent []string
}

// GEOMissing matches articles without a quick answer, takeaways or FAQs.
var GEOMissing = MissingFilter{AnyEmpty: []string{FieldQuickAnswer, FieldKeyTakeaways, FieldFAQSection}}

// ReferencesMissing matches articles without references.
var ReferencesMissing = MissingFilter{AnyEmpty: []string{FieldReferences}}

// BlogPostGEOMissing matches blog posts without a quick answer, takeaways or FAQs.
var BlogPostGEOMissing = MissingFilter{Kind: KindBlogPost, AnyEmpty: GEOMissing.AnyEmpty}

// ProductsUnmigrated matches blog posts that still carry only legacy product links.
var ProductsUnmigrated = MissingFilter{
	Kind:       KindBlogPost,
	AnyEmpty:   []string{FieldFeaturedProducts},
	AllPresent: []string{FieldProductLinks},
}

// DocumentKind resolves the kind the filter applies to.
func (f MissingFilter) DocumentKind() string {
	if f.Kind == "" {
		return KindArticle
	}
	return f.Kind
}

// Matches evaluates the field conditions against a draft held in memory. The
// kind is checked by the store.
func (f MissingFilter) Matches(d ArticleDraft) bool {
	for _, field := range f.AllPresent {
		if fieldEmpty(d, field) {
			return false
		}
	}
	for _, field := range f.AnyEmpty {
		if fieldEmpty(d, field) {
			return true
		}
	}
	return false
}

func fieldEmpty(d ArticleDraft, field string) bool {
	switch field {
	case FieldQuickAnswer:
		return d.QuickAnswer == ""
	case FieldKeyTakeaways:
		return len(d.KeyTakeaways) == 0
	case FieldExpertTips:
		return len(d.ExpertTips) == 0
	case FieldFAQSection:
		return len(d.FAQSection) == 0
	case FieldKyndallsTake:
		return d.KyndallsTake == nil || d.KyndallsTake.Content == ""
	case FieldReferences:
		return len(d.References) == 0
	case FieldProductLinks:
		return len(d.ProductLinks) == 0
	case FieldFeaturedProducts:
		return len(d.FeaturedProducts) == 0
	default:
		return false
	}
}

// HasReferenceType reports whether any reference item carries the given discriminator.
func (d ArticleDraft) HasReferenceType(typ string) bool {
	for _, ref := range d.References {
		if ref.Type == typ {
			return true
		}
	}
	return false
}
