package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

// SupervisorPostgres is a PostgreSQL implementation of
// repository.SupervisorRepository.
type SupervisorPostgres struct {
	db *sql.DB
}

// NewSupervisorPostgres creates a new SupervisorPostgres repository.
func NewSupervisorPostgres(db *sql.DB) *SupervisorPostgres {
	return &SupervisorPostgres{db: db}
}

var _ repository.SupervisorRepository = (*SupervisorPostgres)(nil)

// scanSupervisor reads a row selected with supervisorColumns. Array columns
// are decoded through m.
func scanSupervisor(row rowScanner, m *pgtype.Map) (*model.Supervisor, error) {
	var s model.Supervisor
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.Gender,
		&s.BirthYear,
		&s.Certification,
		&s.Association,
		&s.Region,
		&s.OnlineAvailable,
		&s.OfflineAvailable,
		&s.NationalProgram,
		m.SQLScanner(&s.SupervisionTypes),
		m.SQLScanner(&s.TargetGroups),
		m.SQLScanner(&s.Specialties),
		m.SQLScanner(&s.Approaches),
		&s.ExperienceYears,
		&s.FeePerSession,
		&s.Introduction,
		&s.ContactEmail,
		&s.KakaoID,
		&s.PhotoKey,
		&s.CredentialKey,
		&s.Status,
		&s.RejectReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.SupervisionTypes = emptyIfNil(s.SupervisionTypes)
	s.TargetGroups = emptyIfNil(s.TargetGroups)
	s.Specialties = emptyIfNil(s.Specialties)
	s.Approaches = emptyIfNil(s.Approaches)
	return &s, nil
}

// List returns one page of profiles matching f and the total match count.
func (r *SupervisorPostgres) List(ctx context.Context, f model.SupervisorFilter) (*repository.PageResult[model.Supervisor], error) {
	countQ, countArgs, pageQ, pageArgs := buildSupervisorQueries(f)

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, pageQ, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	items := make([]model.Supervisor, 0)
	for rows.Next() {
		s, err := scanSupervisor(rows, m)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Supervisor]{
		Items: items,
		Total: total,
	}, nil
}

// FindByID fetches a profile by its ID regardless of status.
func (r *SupervisorPostgres) FindByID(ctx context.Context, id string) (*model.Supervisor, error) {
	const q = `SELECT ` + supervisorColumns + ` FROM supervisor_profiles sp WHERE sp.id = $1`
	return scanSupervisor(r.db.QueryRowContext(ctx, q, id), pgtype.NewMap())
}

// FindByUserID fetches the profile owned by a user.
func (r *SupervisorPostgres) FindByUserID(ctx context.Context, userID string) (*model.Supervisor, error) {
	const q = `SELECT ` + supervisorColumns + ` FROM supervisor_profiles sp WHERE sp.user_id = $1`
	return scanSupervisor(r.db.QueryRowContext(ctx, q, userID), pgtype.NewMap())
}

// Update writes the editable fields. Keys, status and timestamps other than
// updated_at are left alone.
func (r *SupervisorPostgres) Update(ctx context.Context, s *model.Supervisor) (*model.Supervisor, error) {
	const q = `
		UPDATE supervisor_profiles sp SET
			name = $2, gender = $3, birth_year = $4, certification = $5, association = $6,
			region = $7, online_available = $8, offline_available = $9, national_program = $10,
			supervision_types = $11, target_groups = $12, specialties = $13, approaches = $14,
			experience_years = $15, fee_per_session = $16, introduction = $17,
			contact_email = $18, kakao_id = $19, updated_at = $20
		WHERE sp.id = $1
		RETURNING ` + supervisorColumns

	row := r.db.QueryRowContext(ctx, q,
		s.ID,
		s.Name,
		string(s.Gender),
		s.BirthYear,
		s.Certification,
		s.Association,
		s.Region,
		s.OnlineAvailable,
		s.OfflineAvailable,
		s.NationalProgram,
		emptyIfNil(s.SupervisionTypes),
		emptyIfNil(s.TargetGroups),
		emptyIfNil(s.Specialties),
		emptyIfNil(s.Approaches),
		s.ExperienceYears,
		s.FeePerSession,
		s.Introduction,
		s.ContactEmail,
		s.KakaoID,
		s.UpdatedAt,
	)
	return scanSupervisor(row, pgtype.NewMap())
}

// SetPhotoKey stores a new photo object key and returns the old one.
func (r *SupervisorPostgres) SetPhotoKey(ctx context.Context, userID, key string, now time.Time) (string, error) {
	return r.swapKey(ctx, "photo_key", userID, key, now)
}

// SetCredentialKey stores a new credential object key and returns the old one.
func (r *SupervisorPostgres) SetCredentialKey(ctx context.Context, userID, key string, now time.Time) (string, error) {
	return r.swapKey(ctx, "credential_key", userID, key, now)
}

// swapKey replaces one of the object key columns under a row lock. column
// is always one of the two constants above.
func (r *SupervisorPostgres) swapKey(ctx context.Context, column, userID, key string, now time.Time) (string, error) {
	qLock := `SELECT id, ` + column + ` FROM supervisor_profiles WHERE user_id = $1 FOR UPDATE`
	qSet := `UPDATE supervisor_profiles SET ` + column + ` = $2, updated_at = $3 WHERE id = $1`

	var prev string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id string
		if err := tx.QueryRowContext(ctx, qLock, userID).Scan(&id, &prev); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, qSet, id, key, now)
		return err
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}

// TransitionStatus moves a profile from one approval status to another and
// mirrors the status on the owning user.
func (r *SupervisorPostgres) TransitionStatus(ctx context.Context, id string, from, to model.AccountStatus, reason string, now time.Time) error {
	const qProfile = `
		UPDATE supervisor_profiles
		SET status = $3, reject_reason = $4, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING user_id
	`
	const qExists = `SELECT EXISTS (SELECT 1 FROM supervisor_profiles WHERE id = $1)`
	const qUser = `UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var userID string
		err := tx.QueryRowContext(ctx, qProfile, id, string(from), string(to), reason, now).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.QueryRowContext(ctx, qExists, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return sql.ErrNoRows
			}
			return repository.ErrStaleState
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, qUser, userID, string(to), now)
		return err
	})
}

// FilterOptions lists the distinct non-empty regions, certifications and
// specialties of approved profiles, sorted.
func (r *SupervisorPostgres) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	const q = `
		SELECT kind, value FROM (
			SELECT 'region' AS kind, region AS value FROM supervisor_profiles WHERE status = 'approved'
			UNION
			SELECT 'certification', certification FROM supervisor_profiles WHERE status = 'approved'
			UNION
			SELECT 'specialty', unnest(specialties) FROM supervisor_profiles WHERE status = 'approved'
		) opts
		WHERE value <> ''
		ORDER BY kind, value
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &model.FilterOptions{
		Genders:          []string{string(model.GenderMale), string(model.GenderFemale)},
		Regions:          []string{},
		Certifications:   []string{},
		Specialties:      []string{},
		TargetGroups:     append([]string(nil), model.TargetGroups...),
		SupervisionTypes: append([]string(nil), model.SupervisionTypes...),
	}
	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return nil, err
		}
		switch kind {
		case "region":
			out.Regions = append(out.Regions, value)
		case "certification":
			out.Certifications = append(out.Certifications, value)
		case "specialty":
			out.Specialties = append(out.Specialties, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
