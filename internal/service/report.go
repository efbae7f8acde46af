package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

type CreateReportInput struct {
	Reason  model.ReportReason `json:"reason" validate:"required,oneof=inappropriate_conduct false_information fraud other"`
	Details string             `json:"details" validate:"max=2000"`
}

type ResolveReportInput struct {
	Status model.ReportStatus `json:"status" validate:"required,oneof=resolved dismissed"`
	Note   string             `json:"admin_note" validate:"max=2000"`
}

// ReportListResult is the service-level DTO for paginated reports.
type ReportListResult struct {
	Items  []model.Report `json:"data"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ReportService defines the use cases around reports on supervisors.
type ReportService interface {
	// Create files a report against an approved supervisor profile.
	Create(ctx context.Context, reporterID, supervisorID string, in CreateReportInput) (*model.Report, error)

	// List returns reports for moderation; an empty status means all.
	List(ctx context.Context, status model.ReportStatus, limit, offset int) (*ReportListResult, error)

	// Resolve closes an open report.
	Resolve(ctx context.Context, id string, in ResolveReportInput) (*model.Report, error)
}

type reportService struct {
	reports     repository.ReportRepository
	supervisors repository.SupervisorRepository
	validate    *validation.Validator
	log         *zap.Logger
	now         func() time.Time
}

// NewReportService constructs a new ReportService.
func NewReportService(reports repository.ReportRepository, supervisors repository.SupervisorRepository, v *validation.Validator, logger *zap.Logger) ReportService {
	if v == nil {
		v = validation.New()
	}
	return &reportService{
		reports:     reports,
		supervisors: supervisors,
		validate:    v,
		log:         logging.OrNop(logger).With(zap.String("component", "report")),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Create(ctx context.Context, reporterID, supervisorID string, in CreateReportInput) (*model.Report, error) {
	if supervisorID == "" {
		return nil, ErrIDRequired
	}
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	sp, err := s.supervisors.FindByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sp.Status != model.StatusApproved {
		return nil, ErrNotFound
	}
	if sp.UserID == reporterID {
		return nil, ErrSelfReport
	}

	created, err := s.reports.Create(ctx, &model.Report{
		ID:           uuid.NewString(),
		ReporterID:   reporterID,
		SupervisorID: supervisorID,
		Reason:       in.Reason,
		Details:      in.Details,
		Status:       model.ReportOpen,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReportExists
		}
		return nil, fmt.Errorf("create report: %w", err)
	}
	s.log.Info("report_created",
		zap.String("report_id", created.ID),
		zap.String("supervisor_id", supervisorID),
		zap.String("reason", string(created.Reason)),
	)
	return created, nil
}

func (s *reportService) List(ctx context.Context, status model.ReportStatus, limit, offset int) (*ReportListResult, error) {
	switch status {
	case "", model.ReportOpen, model.ReportResolved, model.ReportDismissed:
	default:
		return nil, ErrInvalidFilter
	}
	pq := pageQuery(limit, offset)

	res, err := s.reports.List(ctx, status, pq)
	if err != nil {
		return nil, err
	}
	return &ReportListResult{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *reportService) Resolve(ctx context.Context, id string, in ResolveReportInput) (*model.Report, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	out, err := s.reports.Close(ctx, id, in.Status, in.Note, s.now())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrStaleState):
			return nil, ErrReportClosed
		}
		return nil, err
	}
	s.log.Info("report_closed", zap.String("report_id", id), zap.String("status", string(out.Status)))
	return out, nil
}

// pageQuery clamps limit and offset the same way the filters do.
func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = model.DefaultPageLimit
	}
	if limit > model.MaxPageLimit {
		limit = model.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}
