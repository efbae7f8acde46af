package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	repoMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

func TestReportService_Create(t *testing.T) {
	ctx := context.Background()
	approved := &model.Supervisor{ID: "sp-1", UserID: "u-sup", Status: model.StatusApproved}

	tests := []struct {
		name       string
		reporterID string
		in         CreateReportInput
		setupMocks func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository)
		wantErr    error
		wantCode   string
	}{
		{
			name:       "happy path",
			reporterID: "u-1",
			in:         CreateReportInput{Reason: model.ReasonFraud, Details: "  허위 광고  "},
			setupMocks: func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository) {
				mSup.On("FindByID", ctx, "sp-1").Return(approved, nil)
				mReports.On("Create", ctx, mock.MatchedBy(func(r *model.Report) bool {
					return r.ReporterID == "u-1" && r.SupervisorID == "sp-1" &&
						r.Status == model.ReportOpen && r.Details == "허위 광고" && r.ID != ""
				})).Return(&model.Report{ID: "r-1", Status: model.ReportOpen}, nil)
			},
		},
		{
			name:       "unknown reason",
			reporterID: "u-1",
			in:         CreateReportInput{Reason: "spam"},
			setupMocks: func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository) {},
			wantCode:   validation.CodeInvalidValue,
		},
		{
			name:       "supervisor missing",
			reporterID: "u-1",
			in:         CreateReportInput{Reason: model.ReasonOther},
			setupMocks: func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository) {
				mSup.On("FindByID", ctx, "sp-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "own profile",
			reporterID: "u-sup",
			in:         CreateReportInput{Reason: model.ReasonOther},
			setupMocks: func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository) {
				mSup.On("FindByID", ctx, "sp-1").Return(approved, nil)
			},
			wantErr: ErrSelfReport,
		},
		{
			name:       "open report exists",
			reporterID: "u-1",
			in:         CreateReportInput{Reason: model.ReasonOther},
			setupMocks: func(mReports *repoMocks.MockReportRepository, mSup *repoMocks.MockSupervisorRepository) {
				mSup.On("FindByID", ctx, "sp-1").Return(approved, nil)
				mReports.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantErr: ErrReportExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mReports := new(repoMocks.MockReportRepository)
			mSup := new(repoMocks.MockSupervisorRepository)
			tt.setupMocks(mReports, mSup)
			svc := NewReportService(mReports, mSup, nil, nil)

			got, err := svc.Create(ctx, tt.reporterID, "sp-1", tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				var verr *validation.Error
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantCode, verr.Code)
			default:
				require.NoError(t, err)
				assert.Equal(t, "r-1", got.ID)
			}
			mReports.AssertExpectations(t)
			mSup.AssertExpectations(t)
		})
	}
}

func TestReportService_List(t *testing.T) {
	ctx := context.Background()
	mReports := new(repoMocks.MockReportRepository)
	svc := NewReportService(mReports, new(repoMocks.MockSupervisorRepository), nil, nil)

	mReports.On("List", ctx, model.ReportOpen, repository.PageQuery{Limit: model.MaxPageLimit, Offset: 0}).
		Return(&repository.PageResult[model.Report]{Items: []model.Report{{ID: "r-1"}}, Total: 1}, nil)

	res, err := svc.List(ctx, model.ReportOpen, 1000, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, model.MaxPageLimit, res.Limit)

	_, err = svc.List(ctx, "archived", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestReportService_Resolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      ResolveReportInput
		repoErr error
		wantErr error
	}{
		{name: "resolved", in: ResolveReportInput{Status: model.ReportResolved, Note: "경고 조치"}},
		{name: "already closed", in: ResolveReportInput{Status: model.ReportDismissed}, repoErr: repository.ErrStaleState, wantErr: ErrReportClosed},
		{name: "missing", in: ResolveReportInput{Status: model.ReportDismissed}, repoErr: sql.ErrNoRows, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mReports := new(repoMocks.MockReportRepository)
			svc := NewReportService(mReports, new(repoMocks.MockSupervisorRepository), nil, nil)

			if tt.repoErr != nil {
				mReports.On("Close", ctx, "r-1", tt.in.Status, tt.in.Note, mock.Anything).Return(nil, tt.repoErr)
			} else {
				mReports.On("Close", ctx, "r-1", tt.in.Status, tt.in.Note, mock.Anything).
					Return(&model.Report{ID: "r-1", Status: tt.in.Status}, nil)
			}

			got, err := svc.Resolve(ctx, "r-1", tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.ReportResolved, got.Status)
		})
	}

	t.Run("open is not a closing status", func(t *testing.T) {
		mReports := new(repoMocks.MockReportRepository)
		svc := NewReportService(mReports, new(repoMocks.MockSupervisorRepository), nil, nil)

		_, err := svc.Resolve(ctx, "r-1", ResolveReportInput{Status: model.ReportOpen})

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		mReports.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
