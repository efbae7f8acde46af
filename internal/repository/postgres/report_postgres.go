package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

const reportColumns = `id, reporter_id, supervisor_id, reason, details, status, admin_note, created_at, resolved_at`

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

func scanReport(row rowScanner) (*model.Report, error) {
	var (
		rp       model.Report
		resolved sql.NullTime
	)
	if err := row.Scan(
		&rp.ID,
		&rp.ReporterID,
		&rp.SupervisorID,
		&rp.Reason,
		&rp.Details,
		&rp.Status,
		&rp.AdminNote,
		&rp.CreatedAt,
		&resolved,
	); err != nil {
		return nil, err
	}
	if resolved.Valid {
		t := resolved.Time
		rp.ResolvedAt = &t
	}
	return &rp, nil
}

// Create inserts a report. The partial unique index on open reports turns a
// repeat report into repository.ErrDuplicate.
func (r *ReportPostgres) Create(ctx context.Context, rp *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reports (id, reporter_id, supervisor_id, reason, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + reportColumns

	row := r.db.QueryRowContext(ctx, q,
		rp.ID,
		rp.ReporterID,
		rp.SupervisorID,
		string(rp.Reason),
		rp.Details,
		string(rp.Status),
		rp.CreatedAt,
	)
	out, err := scanReport(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// FindByID fetches a single report.
func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return scanReport(r.db.QueryRowContext(ctx, q, id))
}

// List returns reports newest first, optionally restricted to one status.
func (r *ReportPostgres) List(ctx context.Context, status model.ReportStatus, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	w := &whereClause{}
	if status != "" {
		w.add("status = %[1]s", string(status))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + reportColumns + ` FROM reports` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.next(1) + ` OFFSET ` + w.next(2)
	args := append(append([]any{}, w.args...), pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Report]{
		Items: items,
		Total: total,
	}, nil
}

// Close moves an open report to status and records the admin note.
func (r *ReportPostgres) Close(ctx context.Context, id string, status model.ReportStatus, note string, now time.Time) (*model.Report, error) {
	const q = `
		UPDATE reports SET status = $2, admin_note = $3, resolved_at = $4
		WHERE id = $1 AND status = 'open'
		RETURNING ` + reportColumns
	const qExists = `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`

	out, err := scanReport(r.db.QueryRowContext(ctx, q, id, string(status), note, now))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, qExists, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, sql.ErrNoRows
	}
	return nil, repository.ErrStaleState
}
