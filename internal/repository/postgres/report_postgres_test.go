package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

var reportRowColumns = []string{"id", "reporter_id", "supervisor_id", "reason", "details", "status", "admin_note", "created_at", "resolved_at"}

func TestReportPostgres_Create(t *testing.T) {
	now := time.Now().UTC()
	rp := &model.Report{
		ID:           "r-1",
		ReporterID:   "u-1",
		SupervisorID: "sp-1",
		Reason:       model.ReasonFalseInformation,
		Details:      "자격 정보가 다릅니다",
		Status:       model.ReportOpen,
		CreatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReportPostgres(db)

		mock.ExpectQuery("INSERT INTO reports").
			WithArgs("r-1", "u-1", "sp-1", "false_information", rp.Details, "open", now).
			WillReturnRows(sqlmock.NewRows(reportRowColumns).
				AddRow("r-1", "u-1", "sp-1", "false_information", rp.Details, "open", "", now, nil))

		got, err := repo.Create(context.Background(), rp)

		require.NoError(t, err)
		assert.Equal(t, model.ReportOpen, got.Status)
		assert.Nil(t, got.ResolvedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open report exists", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReportPostgres(db)

		mock.ExpectQuery("INSERT INTO reports").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reports_open_pair"})

		_, err := repo.Create(context.Background(), rp)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReportPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReportPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reports WHERE status = $1")).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3")).
		WithArgs("open", 2, 0).
		WillReturnRows(sqlmock.NewRows(reportRowColumns).
			AddRow("r-2", "u-1", "sp-1", "fraud", "", "open", "", now, nil).
			AddRow("r-1", "u-2", "sp-1", "other", "", "open", "", now, nil))

	res, err := repo.List(context.Background(), model.ReportOpen, repository.PageQuery{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportPostgres_Close(t *testing.T) {
	now := time.Now().UTC()

	t.Run("closes open report", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReportPostgres(db)

		mock.ExpectQuery("UPDATE reports SET status").
			WithArgs("r-1", "resolved", "조치 완료", now).
			WillReturnRows(sqlmock.NewRows(reportRowColumns).
				AddRow("r-1", "u-1", "sp-1", "fraud", "", "resolved", "조치 완료", now, now))

		got, err := repo.Close(context.Background(), "r-1", model.ReportResolved, "조치 완료", now)

		require.NoError(t, err)
		require.NotNil(t, got.ResolvedAt)
		assert.Equal(t, "조치 완료", got.AdminNote)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already closed", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReportPostgres(db)

		mock.ExpectQuery("UPDATE reports SET status").
			WillReturnRows(sqlmock.NewRows(reportRowColumns))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Close(context.Background(), "r-1", model.ReportDismissed, "", now)

		assert.ErrorIs(t, err, repository.ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReportPostgres(db)

		mock.ExpectQuery("UPDATE reports SET status").
			WillReturnRows(sqlmock.NewRows(reportRowColumns))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("r-9").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Close(context.Background(), "r-9", model.ReportDismissed, "", now)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
