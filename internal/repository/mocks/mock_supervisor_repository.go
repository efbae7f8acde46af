package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

type MockSupervisorRepository struct {
	mock.Mock
}

func (m *MockSupervisorRepository) List(ctx context.Context, f model.SupervisorFilter) (*repository.PageResult[model.Supervisor], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Supervisor]), args.Error(1)
}

func (m *MockSupervisorRepository) FindByID(ctx context.Context, id string) (*model.Supervisor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorRepository) FindByUserID(ctx context.Context, userID string) (*model.Supervisor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorRepository) Update(ctx context.Context, s *model.Supervisor) (*model.Supervisor, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorRepository) SetPhotoKey(ctx context.Context, userID, key string, now time.Time) (string, error) {
	args := m.Called(ctx, userID, key, now)
	return args.String(0), args.Error(1)
}

func (m *MockSupervisorRepository) SetCredentialKey(ctx context.Context, userID, key string, now time.Time) (string, error) {
	args := m.Called(ctx, userID, key, now)
	return args.String(0), args.Error(1)
}

func (m *MockSupervisorRepository) TransitionStatus(ctx context.Context, id string, from, to model.AccountStatus, reason string, now time.Time) error {
	args := m.Called(ctx, id, from, to, reason, now)
	return args.Error(0)
}

func (m *MockSupervisorRepository) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FilterOptions), args.Error(1)
}
