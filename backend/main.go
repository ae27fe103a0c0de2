package main

import (
	"context"
	"log"
	"time"

	"duotrack/backend/config"
	"duotrack/backend/duolingo"
	"duotrack/backend/middleware"
	"duotrack/backend/routes"
	"duotrack/backend/services"
	"duotrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Duolingo client + snapshot collector
	client := duolingo.NewClient(cfg.DuolingoBaseURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
	collector := services.NewCollectorService(db, cfg, client, logger)

	// Фоновый цикл сбора; COLLECT_INTERVAL_HOURS=0 оставляет только ручной запуск
	if cfg.CollectIntervalHours > 0 {
		scheduler := services.NewScheduler(collector, time.Duration(cfg.CollectIntervalHours)*time.Hour)
		go scheduler.Start(context.Background())
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, client, collector)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
