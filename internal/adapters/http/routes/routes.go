package routes

import (
	"github.com/simha10/survey-ops-backend/internal/adapters/http/handlers"
	"github.com/simha10/survey-ops-backend/internal/adapters/http/middleware"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/config"
	"github.com/simha10/survey-ops-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services, and handlers onto the app
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleMappingRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	geoRepo := repositories.NewGeoRepository(db)
	statusRepo := repositories.NewWardStatusRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	surveyorRepo := repositories.NewSurveyorRepository(db)
	supervisorRepo := repositories.NewSupervisorRepository(db)
	surveyRepo := repositories.NewSurveyRepository(db)
	qcRepo := repositories.NewQCRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// services
	authService := services.NewAuthService(services.AuthConfig{
		JWTSecret:           cfg.JWTSecret,
		AccessExpiryMinutes: cfg.AccessExpiryMinutes,
		RefreshExpiryDays:   cfg.RefreshExpiryDays,
	}, userRepo, roleRepo, tokenRepo, surveyorRepo, supervisorRepo)
	roleService := services.NewRoleService(db, userRepo, roleRepo, surveyorRepo, supervisorRepo, auditRepo)
	geoService := services.NewGeoService(geoRepo)
	assignmentService := services.NewAssignmentService(db, roleService, geoService,
		assignmentRepo, surveyorRepo, supervisorRepo, userRepo, auditRepo)
	wardStatusService := services.NewWardStatusService(db, geoRepo, statusRepo, auditRepo)
	qcService := services.NewQCService(db, surveyRepo, qcRepo, auditRepo)
	dashboardService := services.NewDashboardService(db)

	// handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(roleService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	wardStatusHandler := handlers.NewWardStatusHandler(wardStatusService)
	qcHandler := handlers.NewQCHandler(qcService)
	masterHandler := handlers.NewMasterHandler(geoRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	app.Get("/health", healthHandler.Check)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.AuthRequired(cfg.JWTSecret), authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthRequired(cfg.JWTSecret), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	protected := api.Group("", middleware.AuthRequired(cfg.JWTSecret))

	users := protected.Group("/users", middleware.AdminOnly())
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Put("/:id/role", userHandler.AssignRole)
	users.Delete("/:id/role", userHandler.RemoveRole)

	assignments := protected.Group("/assignments")
	assignments.Get("/", middleware.SupervisorOrAdmin(), assignmentHandler.List)
	assignments.Post("/surveyor", middleware.AdminOnly(), assignmentHandler.AssignSurveyor)
	assignments.Post("/surveyor/bulk", middleware.AdminOnly(), assignmentHandler.BulkAssign)
	assignments.Post("/supervisor", middleware.AdminOnly(), assignmentHandler.AssignSupervisor)
	assignments.Delete("/supervisor/:id", middleware.AdminOnly(), assignmentHandler.RemoveSupervisor)
	assignments.Patch("/:id/status", middleware.AdminOnly(), assignmentHandler.UpdateStatus)
	assignments.Post("/access", middleware.SupervisorOrAdmin(), assignmentHandler.ToggleAccess)

	wards := protected.Group("/wards")
	wards.Post("/status", middleware.SupervisorOrAdmin(), wardStatusHandler.SetStatus)
	wards.Get("/statuses", wardStatusHandler.ListStatuses)
	wards.Get("/:id/status", wardStatusHandler.GetStatus)

	mohallas := protected.Group("/mohallas")
	mohallas.Get("/:id/status", wardStatusHandler.GetMohallaStatus)

	qc := protected.Group("/qc", middleware.SupervisorOrAdmin())
	qc.Post("/surveys", qcHandler.RegisterSurvey)
	qc.Get("/surveys/:code", qcHandler.GetState)
	qc.Post("/decisions", qcHandler.Decide)
	qc.Post("/sections", qcHandler.DecideSection)
	qc.Get("/pending/:level", qcHandler.ListPending)
	qc.Get("/counts", qcHandler.Counts)

	masters := protected.Group("/masters")
	masters.Get("/ulbs", masterHandler.ListUlbs)
	masters.Get("/zones", masterHandler.ListZones)
	masters.Get("/wards", masterHandler.ListWards)
	masters.Get("/wards/:id/mohallas", masterHandler.ListMohallas)

	protected.Get("/dashboard", middleware.AdminOnly(), dashboardHandler.Stats)
}
