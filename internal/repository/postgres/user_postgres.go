package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

const userColumns = `id, email, name, phone, role, status, password_hash, created_at, updated_at, last_login_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Phone,
		&u.Role,
		&u.Status,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// Create inserts the user row and, for supervisors, the profile row in one
// transaction.
func (r *UserPostgres) Create(ctx context.Context, u *model.User, profile *model.Supervisor) (*model.User, error) {
	const qUser = `
		INSERT INTO users (id, email, name, phone, role, status, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + userColumns

	var out *model.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, qUser,
			u.ID,
			u.Email,
			u.Name,
			u.Phone,
			string(u.Role),
			string(u.Status),
			u.PasswordHash,
			u.CreatedAt,
		)
		created, err := scanUser(row)
		if err != nil {
			return mapWriteError(err)
		}
		out = created

		if profile == nil {
			return nil
		}
		profile.UserID = created.ID
		return insertProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, s *model.Supervisor) error {
	const q = `
		INSERT INTO supervisor_profiles (
			id, user_id, name, gender, birth_year, certification, association, region,
			online_available, offline_available, national_program,
			supervision_types, target_groups, specialties, approaches,
			experience_years, fee_per_session, introduction, contact_email, kakao_id,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $22
		)
	`
	_, err := tx.ExecContext(ctx, q,
		s.ID,
		s.UserID,
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
		string(s.Status),
		s.CreatedAt,
	)
	return mapWriteError(err)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email, ignoring case.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// UpdatePassword replaces the password hash of a user.
func (r *UserPostgres) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, passwordHash, now)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// TouchLogin records a successful sign-in.
func (r *UserPostgres) TouchLogin(ctx context.Context, id string, now time.Time) error {
	const q = `UPDATE users SET last_login_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, now)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// requireAffected maps an update that touched no rows to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
