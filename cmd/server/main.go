package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/ai"
	"github.com/postpilot/postpilot-api/internal/api"
	"github.com/postpilot/postpilot-api/internal/api/handlers"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	job "github.com/postpilot/postpilot-api/internal/jobs"
	"github.com/postpilot/postpilot-api/internal/logger"
	"github.com/postpilot/postpilot-api/internal/queue"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	logger.Init(cfg.Log, nil)

	if envErr != nil {
		slog.Warn("no .env file loaded", "error", envErr)
	}

	if cfg.JWTSecret == "" {
		fatal("Refusing to start", &apperrors.ConfigurationError{Setting: "AUTH_JWT_SECRET"})
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		fatal("Failed to connect to database", err)
	}

	if err := db.Ping(); err != nil {
		fatal("Database is unreachable", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()
	tasks := queue.NewClient(client)

	aiClient, err := ai.New(ctx, cfg.AI)
	if err != nil {
		fatal("Failed to create AI client", err)
	}

	r2Service, err := service.NewR2Service(ctx, cfg.R2)
	if err != nil {
		fatal("Failed to create object storage client", err)
	}

	graph := service.NewGraphClient(cfg.Instagram)

	tx := repository.NewTransactor(db)
	profileRepo := repository.NewProfileRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	productImageRepo := repository.NewProductImageRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	calendarService := service.NewCalendarService(cfg.AI, aiClient, tx, profileRepo, calendarRepo, productImageRepo)
	instagramService := service.NewInstagramService(*cfg, graph, profileRepo, calendarRepo, tasks)
	scheduleService := service.NewScheduleService(scheduledPostRepo, calendarRepo, instagramService, tasks)
	analyticsService := service.NewAnalyticsService(*cfg, aiClient, graph, profileRepo, analyticsRepo)
	contentService := service.NewContentService(cfg.AI, aiClient, profileRepo, calendarRepo)
	productImageService := service.NewProductImageService(tx, productImageRepo, r2Service)
	subscriptionService := service.NewSubscriptionService(cfg.Stripe, profileRepo)

	app := api.NewApp(*cfg, api.Handlers{
		Calendar:     handlers.NewCalendarHandler(calendarService),
		Instagram:    handlers.NewInstagramHandler(instagramService, analyticsService),
		Schedule:     handlers.NewScheduleHandler(scheduleService),
		Content:      handlers.NewContentHandler(contentService),
		ProductImage: handlers.NewProductImageHandler(productImageService),
		Billing:      handlers.NewBillingHandler(subscriptionService),
	})

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(profileRepo, instagramService)
	analyticsSyncJob := job.NewAnalyticsSyncJob(profileRepo, tasks)

	c, err := job.NewScheduler(refreshTokenJob, analyticsSyncJob)
	if err != nil {
		fatal("Failed to register cron jobs", err)
	}
	c.Start()

	// queue
	worker := queue.NewWorker(scheduleService, analyticsService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	worker.Register(mux)

	slog.Info("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		fatal("Could not start Asynq server", err)
	}

	go func() {
		if err := app.Listen(cfg.Server.Port); err != nil {
			fatal("Failed to start server", err)
		}
	}()
	slog.Info("Server is running", "addr", cfg.Server.Port)

	gracefulShutdown(app, server, c, db)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, c *cron.Cron, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	c.Stop()
	server.Shutdown()

	if err := app.Shutdown(); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}

	closeDB(db)
	slog.Info("Server shutdown complete.")
}
