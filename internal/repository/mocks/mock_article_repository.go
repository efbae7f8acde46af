package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) List(ctx context.Context, q model.ArticleQuery) (*repository.PageResult[model.PsychologyArticle], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.PsychologyArticle]), args.Error(1)
}

func (m *MockArticleRepository) CategoryCounts(ctx context.Context, search string) ([]model.ArticleCategoryCount, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ArticleCategoryCount), args.Error(1)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id string) (*model.PsychologyArticle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PsychologyArticle), args.Error(1)
}

func (m *MockArticleRepository) Create(ctx context.Context, a *model.PsychologyArticle) (*model.PsychologyArticle, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PsychologyArticle), args.Error(1)
}

func (m *MockArticleRepository) Upsert(ctx context.Context, a *model.PsychologyArticle, keepPublishedAt bool) (bool, error) {
	args := m.Called(ctx, a, keepPublishedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
