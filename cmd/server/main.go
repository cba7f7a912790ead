package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verum/academy-app/internal/api"
	"verum/academy-app/internal/config"
	"verum/academy-app/internal/realtime"
	"verum/academy-app/internal/repository/mongo"
	"verum/academy-app/internal/service"
	"verum/academy-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Academy App API
// @version 1.0
// @description API for the football academy: athlete profiles, media review and live feeds.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Academy App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureMediaIndexes(ctx, appDB.Collection("media"))
		mongo.EnsureMatchIndexes(ctx, appDB.Collection("matches"))
		mongo.EnsureCommentIndexes(ctx, appDB.Collection("comments"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongo.EnsureAwardIndexes(ctx, appDB.Collection("awards"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	mediaRepo := mongo.NewMongoMediaRepository(appDB)
	matchRepo := mongo.NewMongoMatchRepository(appDB)
	commentRepo := mongo.NewMongoCommentRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	awardRepo := mongo.NewMongoAwardRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(userRepo, mediaRepo, fileStorage)
	mediaService := service.NewMediaService(mediaRepo, userRepo, notificationRepo, fileStorage)
	feedService := service.NewFeedService(mediaRepo, cfg.Feed.DefaultLimit)
	matchService := service.NewMatchService(matchRepo, userRepo)
	socialService := service.NewSocialService(userRepo, mediaRepo, commentRepo, notificationRepo, awardRepo)

	// --- Realtime Hub ---
	hub := realtime.NewHub()
	go hub.Run()

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, hub, authService, profileService, mediaService, feedService, matchService, socialService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
