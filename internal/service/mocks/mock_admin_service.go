package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListSupervisors(ctx context.Context, status model.AccountStatus, limit, offset int) (*service.SupervisorListResult, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SupervisorListResult), args.Error(1)
}

func (m *MockAdminService) Approve(ctx context.Context, id string) (*model.Supervisor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockAdminService) Reject(ctx context.Context, id string, in service.RejectInput) (*model.Supervisor, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supervisor), args.Error(1)
}

func (m *MockAdminService) CredentialDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
