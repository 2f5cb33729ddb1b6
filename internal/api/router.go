package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/asistenmu/workflow-api/internal/api/handler"
	"github.com/asistenmu/workflow-api/internal/api/middleware"
	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
	"github.com/asistenmu/workflow-api/internal/core/service"
	"github.com/asistenmu/workflow-api/internal/infrastructure/config"
	mongorepo "github.com/asistenmu/workflow-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/asistenmu/workflow-api/internal/infrastructure/db/redis"
	"github.com/asistenmu/workflow-api/internal/infrastructure/http/handlers"
)

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit ports.AuditPublisher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("workflow"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	layananRepo := mongorepo.NewLayananRepository(db)
	taskRepo := mongorepo.NewTaskRepository(db)
	financeRepo := mongorepo.NewFinanceRepository(db)
	claimGuard := redisinfra.NewClaimGuard(rdb)

	registryService := service.NewRegistryService(userRepo, claimGuard, audit, cfg.JWTSecret, cfg.TokenTTL, log)
	layananService := service.NewLayananService(layananRepo, userRepo, audit, log)
	taskService := service.NewTaskService(taskRepo, layananRepo, userRepo, financeRepo, audit, log)
	financeService := service.NewFinanceService(financeRepo, userRepo, audit, log)

	authHandler := handler.NewAuthHandler(registryService)
	userHandler := handler.NewUserHandler(registryService)
	layananHandler := handler.NewLayananHandler(layananService)
	taskHandler := handler.NewTaskHandler(taskService)
	financeHandler := handler.NewFinanceHandler(financeService)

	auth := middleware.Auth(cfg.JWTSecret)

	clientOnly := middleware.RBAC(string(domain.RoleClient))
	partnerOnly := middleware.RBAC(string(domain.RolePartner))
	staffOnly := middleware.RBAC(
		string(domain.RoleAsistenmu), string(domain.RoleConcierge),
		string(domain.RoleAdmin), string(domain.RoleSuperadmin),
	)
	adminOnly := middleware.RBAC(string(domain.RoleAdmin), string(domain.RoleSuperadmin))
	financeDesk := middleware.RBAC(
		string(domain.RoleFinance), string(domain.RoleAdmin), string(domain.RoleSuperadmin),
	)

	// --- Auth routes ---
	e.POST("/auth/register/client", authHandler.RegisterClient)
	e.POST("/auth/register/partner", authHandler.RegisterPartner)
	e.POST("/auth/register/internal", authHandler.RegisterInternal)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/claim-superadmin", authHandler.ClaimSuperadmin, auth)

	// --- Authenticated API ---
	v1 := e.Group("/v1", auth)

	v1.GET("/me", authHandler.Me)

	// Registry administration.
	v1.POST("/users/internal", userHandler.RegisterStaff, adminOnly)
	v1.GET("/users/pending", userHandler.Pending, adminOnly)
	v1.GET("/users/approvals", userHandler.Approvals, adminOnly)
	v1.POST("/users/:principal/approve", userHandler.Approve, adminOnly)
	v1.POST("/users/:principal/reject", userHandler.Reject, adminOnly)
	v1.PUT("/users/:principal/role", userHandler.UpdateRole, adminOnly)

	// Service packages.
	v1.POST("/layanan", layananHandler.Activate, financeDesk)
	v1.GET("/layanan/mine", layananHandler.Mine, clientOnly)
	v1.GET("/layanan/main", layananHandler.Main, clientOnly)

	// Task lifecycle.
	v1.POST("/tasks", taskHandler.Create, clientOnly)
	v1.POST("/tasks/:id/estimasi", taskHandler.InputEstimasi, staffOnly)
	v1.POST("/tasks/:id/estimasi/approve", taskHandler.ApproveEstimasi, clientOnly)
	v1.POST("/tasks/:id/assign", taskHandler.AssignPartner, staffOnly)
	v1.POST("/tasks/:id/respond", taskHandler.Respond, partnerOnly)
	v1.PUT("/tasks/:id/status", taskHandler.UpdateStatus)
	v1.POST("/tasks/:id/complete", taskHandler.Complete)
	v1.GET("/tasks/:id/settlement", taskHandler.Settlement)
	v1.GET("/clients/:id/tasks", taskHandler.ListByClient)

	// Finance.
	v1.POST("/withdrawals", financeHandler.RequestWithdraw, partnerOnly)
	v1.GET("/withdrawals/pending", financeHandler.Pending, financeDesk)
	v1.POST("/withdrawals/:id/approve", financeHandler.Approve, middleware.RBAC(string(domain.RoleFinance)))
	v1.POST("/withdrawals/:id/reject", financeHandler.Reject, middleware.RBAC(string(domain.RoleFinance)))
	v1.GET("/partners/:id/balance", financeHandler.Balance)
	v1.POST("/partners/:id/balance", financeHandler.Adjust, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
