// Package commands implements the mentorhub command line: the API server
// and its maintenance tasks.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/config"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/database"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/database/migration"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
)

var (
	cfg    *config.AppConfig
	logger *zap.Logger
)

// Execute runs the root command. Without a subcommand it serves the API.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "mentorhub",
		Short:         "Supervisor matching API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			logger = logging.New(cfg.Log, cfg.Location())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd(), migrateCmd(), seedArticlesCmd(), createAdminCmd())

	err := root.ExecuteContext(ctx)
	if err != nil {
		if logger != nil {
			logger.Error("command_failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return err
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
