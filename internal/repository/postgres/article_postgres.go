package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

const articleColumns = `id, title, summary, content, category, author, source_url, thumbnail_url, tags, published_at, created_at`

// ArticlePostgres is a PostgreSQL implementation of repository.ArticleRepository.
type ArticlePostgres struct {
	db *sql.DB
}

// NewArticlePostgres creates a new ArticlePostgres repository.
func NewArticlePostgres(db *sql.DB) *ArticlePostgres {
	return &ArticlePostgres{db: db}
}

var _ repository.ArticleRepository = (*ArticlePostgres)(nil)

func scanArticle(row rowScanner, m *pgtype.Map) (*model.PsychologyArticle, error) {
	var a model.PsychologyArticle
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Summary,
		&a.Content,
		&a.Category,
		&a.Author,
		&a.SourceURL,
		&a.ThumbnailURL,
		m.SQLScanner(&a.Tags),
		&a.PublishedAt,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Tags = emptyIfNil(a.Tags)
	return &a, nil
}

// articleSearch adds the free-text predicate over title, summary, content
// and tags.
func articleSearch(w *whereClause, search string) {
	if search == "" {
		return
	}
	w.add(`(title ILIKE %[1]s OR summary ILIKE %[1]s OR content ILIKE %[1]s
	OR EXISTS (SELECT 1 FROM unnest(tags) AS t(v) WHERE t.v ILIKE %[1]s))`, likePattern(search))
}

// List returns one page of articles, newest first.
func (r *ArticlePostgres) List(ctx context.Context, q model.ArticleQuery) (*repository.PageResult[model.PsychologyArticle], error) {
	w := &whereClause{}
	articleSearch(w, q.Search)
	if q.Category != "" {
		w.add("category = %[1]s", q.Category)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM psychology_articles`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + articleColumns + ` FROM psychology_articles` + w.String() +
		` ORDER BY published_at DESC, id DESC LIMIT ` + w.next(1) + ` OFFSET ` + w.next(2)
	args := append(append([]any{}, w.args...), q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	items := make([]model.PsychologyArticle, 0)
	for rows.Next() {
		a, err := scanArticle(rows, m)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.PsychologyArticle]{
		Items: items,
		Total: total,
	}, nil
}

// CategoryCounts counts search matches per category, largest first.
func (r *ArticlePostgres) CategoryCounts(ctx context.Context, search string) ([]model.ArticleCategoryCount, error) {
	w := &whereClause{}
	articleSearch(w, search)

	q := `SELECT category, COUNT(*) FROM psychology_articles` + w.String() +
		` GROUP BY category ORDER BY COUNT(*) DESC, category ASC`
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ArticleCategoryCount, 0)
	for rows.Next() {
		var c model.ArticleCategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single article.
func (r *ArticlePostgres) FindByID(ctx context.Context, id string) (*model.PsychologyArticle, error) {
	const q = `SELECT ` + articleColumns + ` FROM psychology_articles WHERE id = $1`
	return scanArticle(r.db.QueryRowContext(ctx, q, id), pgtype.NewMap())
}

// Create inserts an article. A taken title yields repository.ErrDuplicate.
func (r *ArticlePostgres) Create(ctx context.Context, a *model.PsychologyArticle) (*model.PsychologyArticle, error) {
	const q = `
		INSERT INTO psychology_articles (id, title, summary, content, category, author, source_url, thumbnail_url, tags, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + articleColumns

	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Title,
		a.Summary,
		a.Content,
		a.Category,
		a.Author,
		a.SourceURL,
		a.ThumbnailURL,
		emptyIfNil(a.Tags),
		a.PublishedAt,
		a.CreatedAt,
	)
	out, err := scanArticle(row, pgtype.NewMap())
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// Upsert inserts a or refreshes the article with the same title.
func (r *ArticlePostgres) Upsert(ctx context.Context, a *model.PsychologyArticle, keepPublishedAt bool) (bool, error) {
	const q = `
		INSERT INTO psychology_articles (id, title, summary, content, category, author, source_url, thumbnail_url, tags, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (title) DO UPDATE SET
			summary = EXCLUDED.summary,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			author = EXCLUDED.author,
			source_url = EXCLUDED.source_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			tags = EXCLUDED.tags,
			published_at = CASE WHEN $12 THEN psychology_articles.published_at ELSE EXCLUDED.published_at END
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Title,
		a.Summary,
		a.Content,
		a.Category,
		a.Author,
		a.SourceURL,
		a.ThumbnailURL,
		emptyIfNil(a.Tags),
		a.PublishedAt,
		a.CreatedAt,
		keepPublishedAt,
	).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// Delete removes an article; a missing row yields sql.ErrNoRows.
func (r *ArticlePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM psychology_articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
