package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

// PasswordResetPostgres is a PostgreSQL implementation of
// repository.PasswordResetRepository.
type PasswordResetPostgres struct {
	db *sql.DB
}

// NewPasswordResetPostgres creates a new PasswordResetPostgres repository.
func NewPasswordResetPostgres(db *sql.DB) *PasswordResetPostgres {
	return &PasswordResetPostgres{db: db}
}

var _ repository.PasswordResetRepository = (*PasswordResetPostgres)(nil)

// Create stores a new token and retires the user's previous unused ones.
func (r *PasswordResetPostgres) Create(ctx context.Context, pr *model.PasswordReset) error {
	const qRetire = `UPDATE password_resets SET used_at = $2 WHERE user_id = $1 AND used_at IS NULL`
	const qInsert = `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, qRetire, pr.UserID, pr.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, qInsert, pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt)
		return mapWriteError(err)
	})
}

// Consume redeems a token: it locks the row, marks it used and sets the
// new password hash.
func (r *PasswordResetPostgres) Consume(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	const qLock = `
		SELECT id, user_id FROM password_resets
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		FOR UPDATE
	`
	const qUse = `UPDATE password_resets SET used_at = $2 WHERE id = $1`
	const qPassword = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	var userID string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id string
		if err := tx.QueryRowContext(ctx, qLock, tokenHash, now).Scan(&id, &userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qUse, id, now); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, qPassword, userID, passwordHash, now)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
