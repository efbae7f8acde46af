package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User, profile *model.Supervisor) (*model.User, error) {
	args := m.Called(ctx, u, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	args := m.Called(ctx, id, passwordHash, now)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLogin(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, r *model.PasswordReset) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) Consume(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	args := m.Called(ctx, tokenHash, passwordHash, now)
	return args.String(0), args.Error(1)
}
