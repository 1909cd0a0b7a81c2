package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

const documentsTable = "content_documents"

const schema = `CREATE TABLE IF NOT EXISTS content_documents (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	show_on_site BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	doc          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS content_documents_kind_created ON content_documents (kind, created_at)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists documents as JSONB rows. Patches merge into the
// document so untouched fields survive.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.ContentStore = (*PostgresStore)(nil)

// OpenPostgres connects and makes sure the schema exists.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger, now: time.Now}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Create inserts a new article document.
func (s *PostgresStore) Create(ctx context.Context, draft domain.ArticleDraft) (string, error) {
	now := s.now().UTC()
	if draft.PublishedAt.IsZero() {
		draft.PublishedAt = now
	}
	id := uuid.NewString()
	query, args, err := insertQuery(id, domain.KindArticle, draft, now)
	if err != nil {
		return "", err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert article: %w", err)
	}
	return id, nil
}

// Patch merges the set fields into the stored document.
func (s *PostgresStore) Patch(ctx context.Context, id string, patch domain.Patch) error {
	query, args, err := patchQuery(id, patch)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patch %s: %w", id, domain.ErrStoreNotFound)
	}
	return nil
}

// QueryMissing returns documents of the filter's kind, newest first, lacking
// any filter field.
func (s *PostgresStore) QueryMissing(ctx context.Context, filter domain.MissingFilter, limit int) ([]domain.StoredArticle, error) {
	return s.selectDocs(ctx, missingQuery(filter, limit))
}

// RecentTitles lists article titles created since the given time.
func (s *PostgresStore) RecentTitles(ctx context.Context, since time.Time) ([]string, error) {
	query, args, err := psql.Select("title").
		From(documentsTable).
		Where(sq.Eq{"kind": domain.KindArticle}).
		Where(sq.GtOrEq{"created_at": since}).
		Where(sq.NotEq{"title": ""}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent titles: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent titles: %w", err)
	}
	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan recent titles: %w", err)
	}
	return titles, nil
}

// FindByReferenceType returns articles with at least one reference of the type.
func (s *PostgresStore) FindByReferenceType(ctx context.Context, typ string) ([]domain.StoredArticle, error) {
	return s.selectDocs(ctx, referenceTypeQuery(typ))
}

// FindRelated returns newest-first documents whose title holds a keyword or
// whose category matches.
func (s *PostgresStore) FindRelated(ctx context.Context, q ports.RelatedQuery) ([]domain.ContentRef, error) {
	docs, err := s.selectDocs(ctx, relatedQuery(q))
	if err != nil {
		return nil, err
	}
	refs := make([]domain.ContentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, domain.ContentRef{ID: doc.ID, Title: doc.Title, Slug: doc.Slug, Category: doc.Category})
	}
	return refs, nil
}

func (s *PostgresStore) selectDocs(ctx context.Context, b sq.SelectBuilder) ([]domain.StoredArticle, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredArticle
	for rows.Next() {
		var (
			id, kind string
			raw      []byte
		)
		if err := rows.Scan(&id, &kind, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decodeDocument(id, kind, raw)
		if err != nil {
			s.logger.Warn("skipping undecodable document", "id", id, "error", err)
			continue
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// decodeDocument reads the jsonb body; the id and kind columns win over any
// copies inside it.
func decodeDocument(id, kind string, raw []byte) (domain.StoredArticle, error) {
	var doc domain.StoredArticle
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.StoredArticle{}, err
	}
	doc.ID, doc.Kind = id, kind
	return doc, nil
}

func insertQuery(id, kind string, draft domain.ArticleDraft, now time.Time) (string, []any, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return "", nil, fmt.Errorf("encode document: %w", err)
	}
	query, args, err := psql.Insert(documentsTable).
		Columns("id", "kind", "title", "category", "show_on_site", "created_at", "updated_at", "doc").
		Values(id, kind, draft.Title, draft.Category, draft.ShowOnSite, now, now, sq.Expr("?::jsonb", string(raw))).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}

func patchQuery(id string, patch domain.Patch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, errors.New("empty patch")
	}
	raw, err := json.Marshal(patch.Values())
	if err != nil {
		return "", nil, fmt.Errorf("encode patch: %w", err)
	}
	query, args, err := psql.Update(documentsTable).
		Set("doc", sq.Expr("doc || ?::jsonb", string(raw))).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build patch: %w", err)
	}
	return query, args, nil
}

func selectDocuments() sq.SelectBuilder {
	return psql.Select("id", "kind", "doc").From(documentsTable)
}

func missingQuery(filter domain.MissingFilter, limit int) sq.SelectBuilder {
	var anyEmpty sq.Or
	for _, field := range filter.AnyEmpty {
		if cond := emptyField(field); cond != "" {
			anyEmpty = append(anyEmpty, sq.Expr(cond))
		}
	}
	b := selectDocuments().Where(sq.Eq{"kind": filter.DocumentKind()})
	for _, field := range filter.AllPresent {
		if cond := emptyField(field); cond != "" {
			b = b.Where(sq.Expr("NOT (" + cond + ")"))
		}
	}
	if len(anyEmpty) > 0 {
		b = b.Where(anyEmpty)
	}
	b = b.OrderBy("created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return b
}

// emptyField is the SQL twin of MissingFilter.Matches for one field.
func emptyField(field string) string {
	switch field {
	case domain.FieldQuickAnswer:
		return "COALESCE(doc->>'quickAnswer', '') = ''"
	case domain.FieldKeyTakeaways, domain.FieldExpertTips, domain.FieldFAQSection, domain.FieldReferences,
		domain.FieldProductLinks, domain.FieldFeaturedProducts:
		return fmt.Sprintf("COALESCE(doc->'%s', '[]'::jsonb) IN ('[]'::jsonb, 'null'::jsonb)", field)
	case domain.FieldKyndallsTake:
		return "COALESCE(doc->'kyndallsTake'->>'content', '') = ''"
	default:
		return ""
	}
}

func referenceTypeQuery(typ string) sq.SelectBuilder {
	probe, _ := json.Marshal([]map[string]string{{"_type": typ}})
	return selectDocuments().
		Where(sq.Eq{"kind": domain.KindArticle}).
		Where(sq.Expr("doc->'references' @> ?::jsonb", string(probe))).
		OrderBy("created_at ASC")
}

func relatedQuery(q ports.RelatedQuery) sq.SelectBuilder {
	b := selectDocuments().Where(sq.Eq{"kind": q.Kind})
	if q.OnlyVisible {
		b = b.Where(sq.Eq{"show_on_site": true})
	}
	if q.ExcludeTitle != "" {
		b = b.Where(sq.NotEq{"title": q.ExcludeTitle})
	}
	var match sq.Or
	for _, k := range q.Keywords {
		if k != "" {
			match = append(match, sq.ILike{"title": "%" + k + "%"})
		}
	}
	if q.Category != "" {
		match = append(match, sq.Eq{"category": q.Category})
	}
	if len(match) > 0 {
		b = b.Where(match)
	}
	b = b.OrderBy("created_at DESC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}
