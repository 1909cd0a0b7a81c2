package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

func TestInsertQueryEncodesDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	draft := domain.ArticleDraft{Title: "Glass Skin", Category: "skincare", Slug: "glass-skin"}
	query, args, err := insertQuery("id-1", domain.KindArticle, draft, now)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO content_documents")
	assert.Contains(t, query, "$8::jsonb")
	require.Len(t, args, 8)
	assert.Equal(t, "id-1", args[0])
	assert.Equal(t, domain.KindArticle, args[1])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(args[7].(string)), &decoded))
	assert.Equal(t, "glass-skin", decoded["slug"])
	assert.Equal(t, false, decoded["showOnSite"])
}

func TestPatchQueryMergesSetFieldsOnly(t *testing.T) {
	t.Parallel()

	answer := "Yes."
	query, args, err := patchQuery("id-1", domain.Patch{QuickAnswer: &answer})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE content_documents SET doc = doc || $1::jsonb, updated_at = NOW() WHERE id = $2", query)
	assert.JSONEq(t, `{"quickAnswer":"Yes."}`, args[0].(string))
	assert.Equal(t, "id-1", args[1])

	_, _, err = patchQuery("id-1", domain.Patch{})
	require.Error(t, err)
}

func TestMissingQueryCoversEveryField(t *testing.T) {
	t.Parallel()

	query, args, err := missingQuery(domain.GEOMissing, 5).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "COALESCE(doc->>'quickAnswer', '') = ''")
	assert.Contains(t, query, "doc->'keyTakeaways'")
	assert.Contains(t, query, "doc->'faqSection'")
	assert.Contains(t, query, " OR ")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT 5")
	assert.Equal(t, []any{domain.KindArticle}, args)

	query, _, err = missingQuery(domain.ReferencesMissing, 0).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "doc->'references'")
	assert.NotContains(t, query, "LIMIT")
}

func TestMissingQueryForBlogPostProducts(t *testing.T) {
	t.Parallel()

	query, args, err := missingQuery(domain.ProductsUnmigrated, 0).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "kind = $1")
	assert.Contains(t, query, "NOT (COALESCE(doc->'productLinks', '[]'::jsonb) IN ('[]'::jsonb, 'null'::jsonb))")
	assert.Contains(t, query, "(COALESCE(doc->'featuredProducts', '[]'::jsonb) IN ('[]'::jsonb, 'null'::jsonb))")
	assert.Equal(t, []any{domain.KindBlogPost}, args)

	_, args, err = missingQuery(domain.BlogPostGEOMissing, 5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, []any{domain.KindBlogPost}, args)
}

func TestDecodeDocumentKeepsColumnsAndBody(t *testing.T) {
	t.Parallel()

	doc, err := decodeDocument("id-1", domain.KindBlogPost, []byte(`{
		"_id": "stale", "title": "Brow Favourites", "htmlContent": "<p>Brush up</p>",
		"productLinks": [{"name": "Boy Brow", "brand": "Glossier"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "id-1", doc.ID)
	assert.Equal(t, domain.KindBlogPost, doc.Kind)
	assert.Equal(t, "<p>Brush up</p>", doc.HTMLContent)
	assert.Equal(t, []string{"Glossier Boy Brow"}, doc.ProductNames())

	_, err = decodeDocument("id-2", domain.KindArticle, []byte(`not json`))
	require.Error(t, err)
}

func TestReferenceTypeQueryUsesContainment(t *testing.T) {
	t.Parallel()

	query, args, err := referenceTypeQuery(domain.TypeReference).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "doc->'references' @> $2::jsonb")
	assert.JSONEq(t, `[{"_type":"reference"}]`, args[1].(string))
}

func TestRelatedQueryFilters(t *testing.T) {
	t.Parallel()

	query, args, err := relatedQuery(ports.RelatedQuery{
		Kind:         domain.KindArticle,
		Keywords:     []string{"serum", "retinol"},
		Category:     "skincare",
		ExcludeTitle: "Serum 101",
		OnlyVisible:  true,
		Limit:        3,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "show_on_site = $2")
	assert.Contains(t, query, "title <> $3")
	assert.Contains(t, query, "title ILIKE $4")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT 3")
	assert.Equal(t, []any{domain.KindArticle, true, "Serum 101", "%serum%", "%retinol%", "skincare"}, args)
}
