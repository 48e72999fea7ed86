package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/config"
	"github.com/skolara/skolara-api/internal/database"
	"github.com/skolara/skolara-api/internal/events"
	"github.com/skolara/skolara-api/internal/handler"
	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
	"github.com/skolara/skolara-api/internal/router"
	"github.com/skolara/skolara-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Course{}, &models.Assignment{}, &models.Enrollment{}, &models.Submission{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		natsConn, err := events.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
		publisher = events.NewPublisher(natsConn, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	courseService := service.NewCourseService(courseRepo, assignmentRepo, validate, logger, cfg.StoreTimeout)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, submissionRepo, validate, publisher, logger, cfg.StoreTimeout)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, activityService, logger, cfg.StoreTimeout)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, validate, publisher, logger, cfg.StoreTimeout)
	gradingService := service.NewGradingService(submissionRepo, assignmentRepo, enrollmentRepo, validate, activityService, publisher, redisClient, logger, cfg.StoreTimeout)
	gradebookService := service.NewGradebookService(assignmentRepo, submissionRepo, enrollmentRepo, redisClient, cfg.GradebookCacheTTL, logger, cfg.StoreTimeout)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		GradebookHandler:  handler.NewGradebookHandler(gradebookService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
