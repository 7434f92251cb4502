package routes

import (
	"log"

	"neetprep/backend/config"
	"neetprep/backend/controllers"
	"neetprep/backend/metrics"
	"neetprep/backend/middleware"
	"neetprep/backend/repository"
	"neetprep/backend/services"
	"neetprep/backend/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Dependencies is everything the route table wires into controllers.
type Dependencies struct {
	Cfg      *config.Config
	Logger   *log.Logger
	Stores   *repository.Stores
	Engine   *session.Engine
	Registry *session.Registry
	Progress *services.ProgressService
	// Metrics is optional; /metrics is only served when set.
	Metrics *metrics.Metrics
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	cfg := deps.Cfg
	stores := deps.Stores

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Auth routes
	authController := controllers.NewAuthController(stores.Users, cfg, deps.Logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(cfg, stores.Users)

	// User routes
	userController := controllers.NewUserController(stores.Users, deps.Progress, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(deps.Progress, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)

	// Question bank
	questionController := controllers.NewQuestionController(stores.Questions, cfg)
	app.Get("/api/questions/chapters", authMiddleware, questionController.GetChapters)

	// Test sessions
	sessionController := controllers.NewSessionController(deps.Engine, deps.Registry, cfg)
	sessions := app.Group("/api/sessions", authMiddleware)
	sessions.Post("/", sessionController.StartSession)
	sessions.Get("/current", sessionController.GetCurrentSession)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Put("/:id/answers", sessionController.SelectAnswer)
	sessions.Post("/:id/next", sessionController.NextQuestion)
	sessions.Post("/:id/previous", sessionController.PreviousQuestion)
	sessions.Post("/:id/submit", sessionController.SubmitSession)
	sessions.Delete("/:id", sessionController.AbandonSession)

	// Attempt history
	attemptController := controllers.NewAttemptController(stores.Attempts, deps.Progress, cfg, deps.Logger)
	attempts := app.Group("/api/attempts", authMiddleware)
	attempts.Get("/", attemptController.GetUserAttempts)
	attempts.Get("/stats", attemptController.GetStats)
	attempts.Get("/performance", attemptController.GetPerformance)
	attempts.Get("/:id", attemptController.GetAttempt)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(stores.Questions, stores.Attempts, deps.Registry, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/analytics", analyticsController.GetPlatformAnalytics)
	admin.Get("/questions", questionController.ListQuestions)
	admin.Post("/questions", questionController.CreateQuestion)
	admin.Get("/questions/:id", questionController.GetQuestion)
	admin.Put("/questions/:id", questionController.UpdateQuestion)
	admin.Delete("/questions/:id", questionController.DeleteQuestion)
	admin.Delete("/attempts/:id", attemptController.DeleteAttempt)
}
