package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

type MockSupervisorService struct {
	mock.Mock
}

func (m *MockSupervisorService) List(ctx context.Context, f model.SupervisorFilter) (*service.SupervisorListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SupervisorListResult), args.Error(1)
}

func (m *MockSupervisorService) Get(ctx context.Context, id string) (*model.Supervisor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FilterOptions), args.Error(1)
}

func (m *MockSupervisorService) GetMine(ctx context.Context, userID string) (*model.Supervisor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorService) UpdateMine(ctx context.Context, userID string, in service.UpdateProfileInput) (*model.Supervisor, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorService) UploadPhoto(ctx context.Context, userID string, f service.Upload) (*model.Supervisor, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockSupervisorService) UploadCredential(ctx context.Context, userID string, f service.Upload) error {
	args := m.Called(ctx, userID, f)
	return args.Error(0)
}
