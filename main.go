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

	"plantcare-be/internal/api"
	"plantcare-be/internal/auth"
	"plantcare-be/internal/clients/advisor"
	"plantcare-be/internal/clients/predictor"
	"plantcare-be/internal/clients/weather"
	"plantcare-be/internal/config"
	"plantcare-be/internal/database"
	"plantcare-be/internal/logger"
	"plantcare-be/internal/monitoring"
	"plantcare-be/internal/services"
	"plantcare-be/internal/store"
	"plantcare-be/internal/uploads"
	"plantcare-be/internal/web"
	"plantcare-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration; this is where a missing API key fails loudly.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Upload storage for analyzed images
	uploadStore, err := uploads.New(cfg.UploadPath)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Templates
	render, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Sessions
	sessionStore := auth.NewSessionStore(cfg.SessionTTL)
	sessions := auth.NewManager(sessionStore, auth.NewTokenCodec(cfg.SessionSecret))

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// External service clients
	predictorClient := predictor.New(cfg.PredictorURL)
	weatherClient := weather.New(cfg.WeatherURL, cfg.WeatherKey)
	advisorClient := advisor.New(cfg.AdvisorURL, cfg.AdvisorKey, cfg.AdvisorModel)

	// Set up services
	userService := services.NewUserService(store.NewSQLiteStore(db))
	eventService := services.NewEventService(db)
	analysisService := services.NewAnalysisService(predictorClient, weatherClient, advisorClient,
		services.AnalysisTimeouts{
			Predict: cfg.PredictTimeout,
			Weather: cfg.WeatherTimeout,
			Advice:  cfg.AdviceTimeout,
		}, cfg.WeatherRequired)

	// Background workers
	monitor := monitoring.NewSystemMonitor(eventService, hub)
	go monitor.Run()

	janitor, err := monitoring.NewJanitor(sessionStore, uploadStore, cfg.JanitorSchedule)
	if err != nil {
		log.Fatalf("Invalid janitor schedule: %v", err)
	}
	go janitor.Run()

	// Set up router
	router := api.NewRouter(sessions, userService, analysisService, eventService, monitor, uploadStore, hub, render)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	monitor.Stop()
	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
