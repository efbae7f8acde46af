package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gosee6432/MindCounselorHub-sub001/docs"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	handlers "github.com/Gosee6432/MindCounselorHub-sub001/internal/http/handler"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/http/middleware"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/mail"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/otel"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/postgres"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics, err := service.NewAuthMetrics(reg)
	if err != nil {
		return err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	var mailer mail.Mailer = mail.NewLogMailer(logger)
	if cfg.Mail.WebhookURL != "" {
		mailer = mail.NewWebhookMailer(cfg.Mail.WebhookURL, cfg.Mail.WebhookToken, cfg.Mail.Timeout)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	validator := validation.New()
	supervisorRepo := postgres.NewSupervisorPostgres(db)

	svcs := handlers.Services{
		Auth: service.NewAuthService(service.AuthDeps{
			Users:        postgres.NewUserPostgres(db),
			Resets:       postgres.NewPasswordResetPostgres(db),
			Hasher:       auth.NewBcryptHasher(cfg.Auth.BcryptCost),
			Tokens:       tokens,
			Mailer:       mailer,
			Validator:    validator,
			Logger:       logger,
			Metrics:      authMetrics,
			UploadTTL:    cfg.Auth.UploadTTL,
			ResetTTL:     cfg.Auth.ResetTokenTTL,
			MailFrom:     cfg.Mail.From,
			ResetURLBase: cfg.Mail.ResetURLBase,
		}),
		Supervisors: service.NewSupervisorService(supervisorRepo, objStore, validator, logger),
		Reports:     service.NewReportService(postgres.NewReportPostgres(db), supervisorRepo, validator, logger),
		Admin:       service.NewAdminService(supervisorRepo, objStore, validator, logger),
		Articles:    service.NewArticleService(postgres.NewArticlePostgres(db), validator, logger),
	}

	app := fiber.New(fiber.Config{
		AppName:      "mentorhub",
		ErrorHandler: handlers.ErrorHandler(logger),
		BodyLimit:    cfg.MaxUploadBytes,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
	}))
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(logger))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.RouteConfig{
		DB:             db,
		Tokens:         tokens,
		AuthRateMax:    cfg.RateLimit.AuthMax,
		AuthRateWindow: cfg.RateLimit.AuthWindow,
		Logger:         logger,
	}, svcs)

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server_shutdown", zap.Duration("timeout", shutdownTimeout))
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
