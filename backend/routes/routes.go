package routes

import (
	"duotrack/backend/config"
	"duotrack/backend/controllers"
	"duotrack/backend/duolingo"
	"duotrack/backend/middleware"
	"duotrack/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, client *duolingo.Client, collector *services.CollectorService) {
	// Auth routes
	authController := controllers.NewAuthController(cfg)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	adminMiddleware := middleware.AdminMiddleware(cfg)

	// User management routes (мутации — только под админским токеном)
	usersController := controllers.NewUsersController(db, cfg, client)
	app.Post("/api/add-user", adminMiddleware, usersController.AddUser)
	app.Post("/api/untrack-user", adminMiddleware, usersController.UntrackUser)
	app.Post("/api/retrack-user", adminMiddleware, usersController.RetrackUser)
	app.Get("/api/users", usersController.GetUsers)
	app.Get("/api/last-collection-time", usersController.GetLastCollectionTime)

	// Ranking routes
	rankingService := services.NewRankingService(db, cfg)
	rankingsController := controllers.NewRankingsController(rankingService, collector)
	app.Get("/api/rankings", rankingsController.GetRankings)
	app.Get("/api/user-history", rankingsController.GetUserHistory)
	app.Post("/api/collect", adminMiddleware, rankingsController.Collect)
}
