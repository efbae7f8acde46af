// Package postgres implements the repository interfaces on PostgreSQL using
// database/sql with parameterized queries and no business logic.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
)

const pgUniqueViolation = "23505"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// mapWriteError turns a unique violation into repository.ErrDuplicate.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// emptyIfNil keeps NOT NULL array columns from receiving NULL.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// likePattern wraps s for a substring ILIKE match, escaping wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// whereClause accumulates AND-ed predicates with positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends a predicate. Every %[1]s in cond is replaced by the
// placeholder of arg.
func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	ph := "$" + strconv.Itoa(len(w.args))
	w.conds = append(w.conds, fmt.Sprintf(cond, ph))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder following the accumulated arguments.
func (w *whereClause) next(offset int) string {
	return "$" + strconv.Itoa(len(w.args)+offset)
}
