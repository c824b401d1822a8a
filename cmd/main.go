package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"progress-service/internal/cache"
	"progress-service/internal/config"
	"progress-service/internal/database/mongo"
	"progress-service/internal/event"
	"progress-service/internal/handlers"
	"progress-service/internal/repository"
	"progress-service/internal/service"
	"progress-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.ServiceConfig

	mongo.InitMongo(&cfg.MongoDB)
	defer mongo.DisconnectMongo()

	learnerRepo := repository.NewLearnerRepository(mongo.Mongo_Database)
	courseRepo := repository.NewCourseRepository(mongo.Mongo_Database)
	groupRepo := repository.NewGroupRepository(mongo.Mongo_Database)
	quizRepo := repository.NewQuizRepository(mongo.Mongo_Database)
	issuanceRepo := repository.NewCertificateRepository(mongo.Mongo_Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, err := range []error{
		learnerRepo.CreateIndexes(ctx),
		courseRepo.CreateIndexes(ctx),
		groupRepo.CreateIndexes(ctx),
	} {
		if err != nil {
			log.Printf("Warning: Failed to create database indexes: %v", err)
		}
	}
	cancel()

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Quiz definitions are read-heavy and authored elsewhere; cache them.
	var quizzes service.QuizStore = quizRepo
	redisClient, err := cache.InitClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: quiz cache disabled: %v", err)
	} else {
		quizzes = cache.NewQuizCache(quizRepo, redisClient, cfg.Redis.QuizTTL)
	}

	certificateService := service.NewCertificateService(issuanceRepo, publisher)
	enrollmentService := service.NewEnrollmentService(learnerRepo, courseRepo, groupRepo, publisher)
	completionService := service.NewCompletionService(learnerRepo, courseRepo, quizzes, certificateService, publisher)
	progressService := service.NewProgressService(learnerRepo, courseRepo, quizzes)
	groupService := service.NewGroupService(groupRepo, publisher)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://evolvia.phrimp.io.vn"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID", "X-User-Permissions"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Progress Service is healthy")
	})

	handlers.NewProgressHandler(enrollmentService, completionService, progressService).RegisterRoutes(r)
	handlers.NewGroupHandler(groupService).RegisterRoutes(r)

	registry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		log.Printf("Warning: service discovery unavailable: %v", err)
	} else if err := registry.Register(); err != nil {
		log.Printf("Warning: failed to register with Consul: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}
	log.Println("Server shutdown complete")
}
