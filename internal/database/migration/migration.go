package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last table step; its presence means the
// schema is complete.
const sentinelTable = "public.password_resets"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  name          TEXT        NOT NULL,
  phone         TEXT        NOT NULL DEFAULT '',
  role          TEXT        NOT NULL CHECK (role IN ('trainee', 'supervisor', 'admin')),
  status        TEXT        NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_login_at TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_supervisor_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS supervisor_profiles (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id           UUID        NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
  name              TEXT        NOT NULL,
  gender            TEXT        NOT NULL CHECK (gender IN ('male', 'female')),
  birth_year        INT         NOT NULL DEFAULT 0,
  certification     TEXT        NOT NULL,
  association       TEXT        NOT NULL DEFAULT '',
  region            TEXT        NOT NULL,
  online_available  BOOLEAN     NOT NULL DEFAULT false,
  offline_available BOOLEAN     NOT NULL DEFAULT false,
  national_program  BOOLEAN     NOT NULL DEFAULT false,
  supervision_types TEXT[]      NOT NULL DEFAULT '{}',
  target_groups     TEXT[]      NOT NULL DEFAULT '{}',
  specialties       TEXT[]      NOT NULL DEFAULT '{}',
  approaches        TEXT[]      NOT NULL DEFAULT '{}',
  experience_years  INT         NOT NULL DEFAULT 0 CHECK (experience_years >= 0),
  fee_per_session   INT         NOT NULL DEFAULT 0 CHECK (fee_per_session >= 0),
  introduction      TEXT        NOT NULL DEFAULT '',
  contact_email     TEXT        NOT NULL DEFAULT '',
  kakao_id          TEXT        NOT NULL DEFAULT '',
  photo_key         TEXT        NOT NULL DEFAULT '',
  credential_key    TEXT        NOT NULL DEFAULT '',
  status            TEXT        NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
  reject_reason     TEXT        NOT NULL DEFAULT '',
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_supervisor_profiles_status_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supervisor_profiles_status_created_at ON supervisor_profiles (status, created_at DESC);`,
	},
	{
		Name: "create_index_supervisor_profiles_region",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supervisor_profiles_region ON supervisor_profiles (region);`,
	},
	{
		Name: "create_index_supervisor_profiles_certification",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supervisor_profiles_certification ON supervisor_profiles (certification);`,
	},
	{
		Name: "create_index_supervisor_profiles_target_groups",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supervisor_profiles_target_groups ON supervisor_profiles USING GIN (target_groups);`,
	},
	{
		Name: "create_index_supervisor_profiles_specialties",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supervisor_profiles_specialties ON supervisor_profiles USING GIN (specialties);`,
	},
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  reporter_id   UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  supervisor_id UUID        NOT NULL REFERENCES supervisor_profiles (id) ON DELETE CASCADE,
  reason        TEXT        NOT NULL CHECK (reason IN ('inappropriate_conduct', 'false_information', 'fraud', 'other')),
  details       TEXT        NOT NULL DEFAULT '',
  status        TEXT        NOT NULL CHECK (status IN ('open', 'resolved', 'dismissed')),
  admin_note    TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  resolved_at   TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_reports_open_pair",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_open_pair ON reports (reporter_id, supervisor_id) WHERE status = 'open';`,
	},
	{
		Name: "create_index_reports_status_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_status_created_at ON reports (status, created_at DESC);`,
	},
	{
		Name: "create_table_psychology_articles",
		SQL: `CREATE TABLE IF NOT EXISTS psychology_articles (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title         TEXT        NOT NULL UNIQUE,
  summary       TEXT        NOT NULL DEFAULT '',
  content       TEXT        NOT NULL DEFAULT '',
  category      TEXT        NOT NULL,
  author        TEXT        NOT NULL DEFAULT '',
  source_url    TEXT        NOT NULL DEFAULT '',
  thumbnail_url TEXT        NOT NULL DEFAULT '',
  tags          TEXT[]      NOT NULL DEFAULT '{}',
  published_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_psychology_articles_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_psychology_articles_category ON psychology_articles (category);`,
	},
	{
		Name: "create_index_psychology_articles_published_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_psychology_articles_published_at ON psychology_articles (published_at DESC);`,
	},
	{
		Name: "create_table_password_resets",
		SQL: `CREATE TABLE IF NOT EXISTS password_resets (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  token_hash TEXT        NOT NULL UNIQUE,
  expires_at TIMESTAMPTZ NOT NULL,
  used_at    TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_password_resets_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_password_resets_user_id ON password_resets (user_id);`,
	},
}

// EnsureMigrated checks for the sentinel table and applies every step if it
// is missing. Steps are idempotent, so a run interrupted halfway is finished
// by the next one.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string, logger *zap.Logger) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
