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

	"github.com/quangdm/exam-portal-api/internal/config"
	"github.com/quangdm/exam-portal-api/internal/database"
	"github.com/quangdm/exam-portal-api/internal/handler"
	"github.com/quangdm/exam-portal-api/internal/middleware"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/repository"
	"github.com/quangdm/exam-portal-api/internal/router"
	"github.com/quangdm/exam-portal-api/internal/service"
	"github.com/quangdm/exam-portal-api/pkg/storage"
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

	if err := db.AutoMigrate(&models.User{}, &models.Question{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	blobs, err := storage.New(storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	service.SetMaxUploadMB(cfg.MaxUploadMB)

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	examCache := service.NewExamCache(redisClient, cfg.ExamCacheTTL)

	authService := service.NewAuthService(userRepo, redisClient, cfg.JWTSecret, cfg.SessionTTL, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, logger)
	questionService := service.NewQuestionService(questionRepo, validate, blobs, examCache, logger)
	examService := service.NewExamService(questionRepo, examCache, blobs, cfg.SignedURLTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, validate, blobs, cfg.SignedURLTTL, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, blobs, cfg.SignedURLTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	authHandler := handler.NewAuthHandler(authService, validate, logger)
	questionHandler := handler.NewQuestionHandler(questionService, logger)
	examHandler := handler.NewExamHandler(examService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, userService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	mediaHandler := handler.NewMediaHandler(blobs, cfg.SignedURLTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		QuestionHandler:   questionHandler,
		ExamHandler:       examHandler,
		SubmissionHandler: submissionHandler,
		GradingHandler:    gradingHandler,
		UserHandler:       userHandler,
		MediaHandler:      mediaHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, authService),
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
