package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/http/middleware"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Auth        service.AuthService
	Supervisors service.SupervisorService
	Reports     service.ReportService
	Admin       service.AdminService
	Articles    service.ArticleService
}

// RouteConfig carries the dependencies of the routing layer itself.
type RouteConfig struct {
	DB             *sql.DB
	Tokens         middleware.TokenParser
	AuthRateMax    int
	AuthRateWindow time.Duration
	Logger         *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, cfg RouteConfig, svc Services) {
	log := logging.OrNop(cfg.Logger).With(zap.String("component", "http"))

	app.Get("/health", HealthCheck(cfg.DB))
	app.Get("/healthz", LivenessProbe())

	authn := middleware.Authenticate(cfg.Tokens)
	limit := middleware.RateLimit(cfg.AuthRateMax, cfg.AuthRateWindow)

	api := app.Group("/api")

	a := api.Group("/auth")
	a.Post("/register", limit, Register(svc.Auth, log))
	a.Post("/login", limit, Login(svc.Auth, log))
	a.Post("/admin/login", limit, AdminLogin(svc.Auth, log))
	a.Post("/forgot-password", limit, ForgotPassword(svc.Auth, log))
	a.Post("/reset-password", limit, ResetPassword(svc.Auth, log))
	a.Get("/me", authn, Me(svc.Auth, log))
	a.Post("/change-password", authn, ChangePassword(svc.Auth, log))

	supervisorOnly := middleware.RequireRoles(model.RoleSupervisor)

	s := api.Group("/supervisors")
	s.Get("/", ListSupervisors(svc.Supervisors, log))
	s.Get("/filters", SupervisorFilterOptions(svc.Supervisors, log))
	s.Get("/me", authn, supervisorOnly, GetMyProfile(svc.Supervisors, log))
	s.Put("/me", authn, supervisorOnly, UpdateMyProfile(svc.Supervisors, log))
	s.Post("/me/photo", authn, supervisorOnly, UploadMyPhoto(svc.Supervisors, log))
	s.Post("/me/credential",
		middleware.Authenticate(cfg.Tokens, auth.ScopeCredential),
		supervisorOnly,
		UploadMyCredential(svc.Supervisors, log),
	)
	s.Get("/:id", GetSupervisor(svc.Supervisors, log))
	s.Post("/:id/reports", authn,
		middleware.RequireRoles(model.RoleTrainee, model.RoleSupervisor),
		CreateReport(svc.Reports, log),
	)

	p := api.Group("/psychology/articles")
	p.Get("/", ListArticles(svc.Articles, log))
	p.Get("/:id", GetArticle(svc.Articles, log))

	adm := api.Group("/admin", authn, middleware.RequireRoles(model.RoleAdmin))
	adm.Get("/supervisors", AdminListSupervisors(svc.Admin, log))
	adm.Get("/supervisors/:id/credential", DownloadCredential(svc.Admin, log))
	adm.Post("/supervisors/:id/approve", ApproveSupervisor(svc.Admin, log))
	adm.Post("/supervisors/:id/reject", RejectSupervisor(svc.Admin, log))
	adm.Get("/reports", ListReports(svc.Reports, log))
	adm.Patch("/reports/:id", ResolveReport(svc.Reports, log))
	adm.Post("/psychology/articles", CreateArticle(svc.Articles, log))
	adm.Delete("/psychology/articles/:id", DeleteArticle(svc.Articles, log))
}
