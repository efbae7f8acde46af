package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) List(ctx context.Context, q model.ArticleQuery) (*service.ArticleListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArticleListResult), args.Error(1)
}

func (m *MockArticleService) Get(ctx context.Context, id string) (*model.PsychologyArticle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PsychologyArticle), args.Error(1)
}

func (m *MockArticleService) Create(ctx context.Context, in service.CreateArticleInput) (*model.PsychologyArticle, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PsychologyArticle), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleService) Seed(ctx context.Context, in []service.CreateArticleInput) (service.SeedResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.SeedResult), args.Error(1)
}
