package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	repoMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

func TestArticleService_List_CategoryCounts(t *testing.T) {
	ctx := context.Background()
	counts := []model.ArticleCategoryCount{
		{Category: "우울", Count: 5},
		{Category: "불안", Count: 3},
		{Category: "관계", Count: 1},
	}

	tests := []struct {
		name      string
		q         model.ArticleQuery
		pageTotal int
	}{
		{name: "all categories", q: model.ArticleQuery{Category: "전체", Search: " 스트레스 "}, pageTotal: 9},
		{name: "selected category", q: model.ArticleQuery{Category: "불안", Search: "스트레스"}, pageTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockArticleRepository)
			svc := NewArticleService(mRepo, nil, nil)

			mRepo.On("List", mock.Anything, mock.MatchedBy(func(q model.ArticleQuery) bool {
				return q.Search == "스트레스" && q.Limit == model.DefaultPageLimit
			})).Return(&repository.PageResult[model.PsychologyArticle]{Items: []model.PsychologyArticle{}, Total: tt.pageTotal}, nil)
			mRepo.On("CategoryCounts", mock.Anything, "스트레스").Return(counts, nil)

			res, err := svc.List(ctx, tt.q)

			require.NoError(t, err)
			assert.Equal(t, 9, res.AllCount)
			assert.Equal(t, counts, res.Categories)

			sum := 0
			for _, c := range res.Categories {
				sum += c.Count
				if c.Category == tt.q.Normalize().Category {
					assert.Equal(t, res.Total, c.Count, "badge of the selected category equals total")
				}
			}
			assert.Equal(t, res.AllCount, sum)
			if tt.q.Normalize().Category == "" {
				assert.Equal(t, res.AllCount, res.Total)
			}
		})
	}
}

func TestArticleService_List_Error(t *testing.T) {
	mRepo := new(repoMocks.MockArticleRepository)
	svc := NewArticleService(mRepo, nil, nil)

	mRepo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
	mRepo.On("CategoryCounts", mock.Anything, mock.Anything).Return([]model.ArticleCategoryCount{}, nil).Maybe()

	_, err := svc.List(context.Background(), model.ArticleQuery{})

	assert.EqualError(t, err, "db fail")
}

func TestArticleService_Get(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockArticleRepository)
	svc := NewArticleService(mRepo, nil, nil)
	mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestArticleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults published_at and tags", func(t *testing.T) {
		mRepo := new(repoMocks.MockArticleRepository)
		svc := NewArticleService(mRepo, nil, nil)

		mRepo.On("Create", ctx, mock.MatchedBy(func(a *model.PsychologyArticle) bool {
			return a.Title == "번아웃 이해하기" && !a.PublishedAt.IsZero() && a.Tags != nil && a.ID != ""
		})).Return(&model.PsychologyArticle{ID: "a-1"}, nil)

		got, err := svc.Create(ctx, CreateArticleInput{Title: " 번아웃 이해하기 ", Content: "본문", Category: "스트레스"})

		require.NoError(t, err)
		assert.Equal(t, "a-1", got.ID)
	})

	t.Run("duplicate title", func(t *testing.T) {
		mRepo := new(repoMocks.MockArticleRepository)
		svc := NewArticleService(mRepo, nil, nil)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)

		_, err := svc.Create(ctx, CreateArticleInput{Title: "t", Content: "c", Category: "k"})

		assert.ErrorIs(t, err, ErrArticleExists)
	})

	t.Run("invalid source url", func(t *testing.T) {
		mRepo := new(repoMocks.MockArticleRepository)
		svc := NewArticleService(mRepo, nil, nil)

		_, err := svc.Create(ctx, CreateArticleInput{Title: "t", Content: "c", Category: "k", SourceURL: "nope"})

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "source_url")
	})
}

func TestArticleService_Delete(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockArticleRepository)
	svc := NewArticleService(mRepo, nil, nil)
	mRepo.On("Delete", ctx, "a-1").Return(nil)
	mRepo.On("Delete", ctx, "a-9").Return(sql.ErrNoRows)

	assert.NoError(t, svc.Delete(ctx, "a-1"))
	assert.ErrorIs(t, svc.Delete(ctx, "a-9"), ErrNotFound)
}

func TestArticleService_Seed(t *testing.T) {
	ctx := context.Background()
	published := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	t.Run("counts inserts and updates", func(t *testing.T) {
		mRepo := new(repoMocks.MockArticleRepository)
		svc := NewArticleService(mRepo, nil, nil)

		mRepo.On("Upsert", ctx, mock.MatchedBy(func(a *model.PsychologyArticle) bool { return a.Title == "a" }), true).Return(true, nil)
		mRepo.On("Upsert", ctx, mock.MatchedBy(func(a *model.PsychologyArticle) bool {
			return a.Title == "b" && a.PublishedAt.Equal(published)
		}), false).Return(false, nil)

		res, err := svc.Seed(ctx, []CreateArticleInput{
			{Title: "a", Content: "c", Category: "k"},
			{Title: "b", Content: "c", Category: "k", PublishedAt: &published},
		})

		require.NoError(t, err)
		assert.Equal(t, SeedResult{Inserted: 1, Updated: 1}, res)
		mRepo.AssertExpectations(t)
	})

	t.Run("invalid entry writes nothing", func(t *testing.T) {
		mRepo := new(repoMocks.MockArticleRepository)
		svc := NewArticleService(mRepo, nil, nil)

		_, err := svc.Seed(ctx, []CreateArticleInput{
			{Title: "a", Content: "c", Category: "k"},
			{Title: "b"},
		})

		assert.ErrorContains(t, err, `article 1 ("b")`)
		mRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})
}
