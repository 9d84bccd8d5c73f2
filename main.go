package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/glitchlobby/lobby-be/internal/api"
	"github.com/glitchlobby/lobby-be/internal/auth"
	"github.com/glitchlobby/lobby-be/internal/config"
	"github.com/glitchlobby/lobby-be/internal/database"
	"github.com/glitchlobby/lobby-be/internal/logger"
	"github.com/glitchlobby/lobby-be/internal/monitoring"
	"github.com/glitchlobby/lobby-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure the directory holding the database exists
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
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

	sessionTTL := time.Duration(cfg.SessionTTL) * time.Hour

	// Set up services
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, sessionTTL)
	gate := auth.New(sessionService, []byte(cfg.SessionSecret))

	// Set up and run the background session sweeper
	sweeper, err := monitoring.NewSweeper(sessionService, cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("Failed to set up session sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(gate, userService, sessionService, cfg.PublicDir, sessionTTL, cfg.CORSOrigin)

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

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
