// Package database opens the PostgreSQL pool shared by the repositories.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/config"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
)

// ApplicationName is reported to PostgreSQL in pg_stat_activity.
const ApplicationName = "mentorhub"

const (
	connectTimeoutSec = 5
	pingTimeout       = 5 * time.Second
)

var (
	sqlOpen = sql.Open

	// ConnectAttempts bounds how often startup pings the server before
	// giving up; the database container often starts after the API.
	ConnectAttempts = 5
	ConnectBackoff  = time.Second
)

// BuildPostgresDSN renders c as a postgres:// URL for the pgx driver.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"host", c.Host}, {"port", c.Port}, {"user", c.User}, {"name", c.Name},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("invalid database config: missing %s", strings.Join(missing, ", "))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return "", fmt.Errorf("invalid database port %q", c.Port)
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
		User:   url.User(c.User),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	q.Set("application_name", ApplicationName)
	q.Set("connect_timeout", strconv.Itoa(connectTimeoutSec))
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewPostgres opens a traced pool on the pgx stdlib driver and waits until
// the server answers a ping.
func NewPostgres(ctx context.Context, c config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	log := logging.OrNop(logger).With(zap.String("component", "database"), zap.String("db_host", c.Host))

	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	if err := waitForServer(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("db_connected", zap.Int("max_open_conns", c.MaxOpenConns))
	return db, nil
}

func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}

// waitForServer pings up to ConnectAttempts times. Only transient failures
// are retried; bad credentials fail on the first attempt.
func waitForServer(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	attempts := max(ConnectAttempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = Ping(ctx, db, pingTimeout); err == nil {
			return nil
		}
		if i == attempts || !IsTransient(err) {
			break
		}
		log.Warn("db_connect_retry", zap.Int("attempt", i), zap.Error(err))

		timer := time.NewTimer(ConnectBackoff * time.Duration(i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(fmt.Errorf("db ping: %w", err), ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("db ping: %w", err)
}

// Ping checks connectivity within timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(ctx)
}
