package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, reporterID, supervisorID string, in service.CreateReportInput) (*model.Report, error) {
	args := m.Called(ctx, reporterID, supervisorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, status model.ReportStatus, limit, offset int) (*service.ReportListResult, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportListResult), args.Error(1)
}

func (m *MockReportService) Resolve(ctx context.Context, id string, in service.ResolveReportInput) (*model.Report, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}
