package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, in service.ForgotPasswordInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, in service.ResetPasswordInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID string, in service.ChangePasswordInput) error {
	args := m.Called(ctx, userID, in)
	return args.Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, in service.CreateAdminInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
