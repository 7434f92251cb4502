package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neetprep/backend/config"
	"neetprep/backend/events"
	"neetprep/backend/metrics"
	"neetprep/backend/middleware"
	"neetprep/backend/repository"
	"neetprep/backend/routes"
	"neetprep/backend/services"
	"neetprep/backend/session"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat})

	ctx := context.Background()

	// Initialize stores
	stores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Error initializing stores: %v", err)
	}

	if cfg.RedisURI != "" {
		client, err := repository.NewRedisClient(ctx, cfg.RedisURI)
		if err != nil {
			logger.Printf("Redis unavailable, progress cache disabled: %v", err)
		} else {
			defer client.Close()
			stores.Progress = repository.NewCachedProgressStore(stores.Progress, client, cfg.ProgressCacheTTL, logger)
			logger.Printf("Progress cache enabled (ttl %s)", cfg.ProgressCacheTTL)
		}
	}

	publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, logger)
	if err != nil {
		logger.Fatalf("Error initializing event publisher: %v", err)
	}
	defer publisher.Close()

	// Session engine
	m := metrics.New()
	progress := services.NewProgressService(stores.Attempts, stores.Progress, logger)
	engine := session.NewEngine(stores.Questions, stores.Attempts,
		session.WithLogger(logger),
		session.WithDuration(cfg.TestDurationSeconds, time.Second),
		session.WithQuestionBounds(cfg.MinQuestions, cfg.MaxQuestions),
		session.WithHooks(progress.Hooks()),
		session.WithHooks(events.SessionHooks(publisher, logger)),
		session.WithHooks(m.SessionHooks()),
	)
	registry := session.NewRegistry()
	m.TrackActiveSessions(registry.Active)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger, m.ObserveRequest))

	// Setup routes
	routes.SetupRoutes(app, routes.Dependencies{
		Cfg:      cfg,
		Logger:   logger,
		Stores:   stores,
		Engine:   engine,
		Registry: registry,
		Progress: progress,
		Metrics:  m,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("Shutdown: %v", err)
		}
	}()

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Printf("Server stopped: %v", err)
	}
}

func buildStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*repository.Stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Println("Using in-memory stores")
		return repository.NewMemoryStores()
	}

	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return nil, err
	}
	seeded, err := repository.SeedIfEmpty(ctx, db)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		logger.Printf("Seeded %d questions", seeded)
	}
	return repository.NewGormStores(db), nil
}
