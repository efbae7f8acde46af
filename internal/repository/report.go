package repository

import (
	"context"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

// ReportRepository persists reports against supervisors.
type ReportRepository interface {
	// Create inserts r. A second open report for the same pair yields ErrDuplicate.
	Create(ctx context.Context, r *model.Report) (*model.Report, error)

	FindByID(ctx context.Context, id string) (*model.Report, error)

	// List returns reports newest first; an empty status means all.
	List(ctx context.Context, status model.ReportStatus, pq PageQuery) (*PageResult[model.Report], error)

	// Close sets a closing status on an open report. ErrStaleState if the
	// report is no longer open.
	Close(ctx context.Context, id string, status model.ReportStatus, note string, now time.Time) (*model.Report, error)
}
