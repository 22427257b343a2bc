package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidyarthi-portal/exam-service/internal/cache"
	"github.com/vidyarthi-portal/exam-service/internal/config"
	"github.com/vidyarthi-portal/exam-service/internal/handlers"
	"github.com/vidyarthi-portal/exam-service/internal/middleware"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories/postgres"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/storage"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
	"github.com/vidyarthi-portal/exam-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Subject{},
		&models.Exam{},
		&models.ExamEnrollment{},
		&models.ExamTeacherAssignment{},
		&models.AnswerSheet{},
		&models.QuestionMark{},
		&models.Annotation{},
		&models.Grievance{},
	); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogger)

	minioClient, err := pkg.NewMinioClient(cfg)
	if err != nil {
		logger.Error("failed to connect to object storage", "error", err)
		os.Exit(1)
	}
	objectStore := storage.NewMinioStore(minioClient, cfg.Storage.Bucket, slogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewGormRepository(db)
	v := validator.New()

	serviceManager := services.NewServiceManager(repo, objectStore, cacheService, publisher, slogger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	auth := middleware.NewAuthenticator(cfg.Casdoor, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager.SetupRoutes(router, auth)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting exam service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
