package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/postgres"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func seedArticlesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-articles",
		Short: "Insert or update psychology articles from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			articles, err := service.DecodeArticleSeed(f)
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				return errors.New("seed file has no articles")
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewArticleService(postgres.NewArticlePostgres(db), validation.New(), logger)
			res, err := svc.Seed(cmd.Context(), articles)
			if err != nil {
				return err
			}
			logger.Info("articles_seeded",
				zap.String("file", file),
				zap.Int("inserted", res.Inserted),
				zap.Int("updated", res.Updated),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, updated %d\n", res.Inserted, res.Updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the articles YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account (password from ADMIN_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return errors.New("ADMIN_PASSWORD is required")
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewAuthService(service.AuthDeps{
				Users:  postgres.NewUserPostgres(db),
				Hasher: auth.NewBcryptHasher(cfg.Auth.BcryptCost),
				Logger: logger,
			})
			u, err := svc.CreateAdmin(cmd.Context(), service.CreateAdminInput{Email: email, Name: name, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	cmd.Flags().StringVar(&name, "name", "관리자", "admin display name")
	return cmd
}
