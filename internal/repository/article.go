package repository

import (
	"context"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

// ArticleRepository persists psychology articles.
type ArticleRepository interface {
	// List returns the articles matching q (already normalized), newest first.
	List(ctx context.Context, q model.ArticleQuery) (*PageResult[model.PsychologyArticle], error)

	// CategoryCounts counts articles per category among those matching
	// search, ignoring any category selection.
	CategoryCounts(ctx context.Context, search string) ([]model.ArticleCategoryCount, error)

	FindByID(ctx context.Context, id string) (*model.PsychologyArticle, error)

	Create(ctx context.Context, a *model.PsychologyArticle) (*model.PsychologyArticle, error)

	// Upsert inserts a or updates the article with the same title. With
	// keepPublishedAt an existing row keeps its published_at. It reports
	// whether a row was inserted.
	Upsert(ctx context.Context, a *model.PsychologyArticle, keepPublishedAt bool) (bool, error)

	// Delete removes an article. Deleting a missing article returns sql.ErrNoRows.
	Delete(ctx context.Context, id string) error
}
