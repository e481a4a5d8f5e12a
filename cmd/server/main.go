package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/simha10/survey-ops-backend/internal/adapters/http/middleware"
	"github.com/simha10/survey-ops-backend/internal/adapters/http/routes"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/config"
	"github.com/simha10/survey-ops-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title Survey Ops API
// @version 1.0
// @description Assignment and QC review backend for municipal property surveys
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Migrations applied")

	if cfg.SeedMasterData {
		if err := config.SeedMasterData(db); err != nil {
			log.Fatalf("❌ Master data seeding failed: %v", err)
		}
	}
	if cfg.SeedDevUsers {
		if err := config.SeedDevUsers(db); err != nil {
			log.Fatalf("❌ Dev user seeding failed: %v", err)
		}
	}

	sweeper := services.NewAccessSweeper(
		db,
		repositories.NewSurveyorRepository(db),
		repositories.NewAssignmentRepository(db),
		repositories.NewUserRepository(db),
		repositories.NewAuditRepository(db),
		cfg.InactivityDays,
	)
	sweeper.Start()

	app := fiber.New(fiber.Config{
		AppName:      "survey-ops-backend",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg.AllowedOrigins)
	routes.Setup(app, db, cfg)

	go func() {
		log.Printf("🚀 Server listening on :%s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("❌ Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	sweeper.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Shutdown error: %v", err)
	}
	log.Println("✅ Server stopped")
}
