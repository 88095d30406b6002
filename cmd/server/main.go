package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"relationship-coach/internal/api"
	"relationship-coach/internal/coach"
	"relationship-coach/internal/config"
	"relationship-coach/internal/db"
	"relationship-coach/internal/service"
)

func main() {
	// Load .env if present, then configuration from the environment
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrated successfully")

	// Load the coach reply book (optional override file)
	book := coach.DefaultBook()
	if cfg.RepliesPath != "" {
		loaded, err := coach.LoadBook(cfg.RepliesPath)
		if err != nil {
			log.Printf("Warning: Failed to load reply book from %s: %v (using defaults)", cfg.RepliesPath, err)
		} else {
			book = loaded
			log.Printf("Reply book loaded from %s", cfg.RepliesPath)
		}
	}

	svc := service.NewService(database, coach.NewSelector(book))
	router := api.NewRouter(svc, cfg.StaticDir, cfg.AllowedOrigins)

	// Setup server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		close(done)
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Static files served from: %s", cfg.StaticDir)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	<-done
	log.Println("Server stopped gracefully")
}
