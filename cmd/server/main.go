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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prudhvinik1/mobilerp/internal/api"
	"github.com/prudhvinik1/mobilerp/internal/config"
	"github.com/prudhvinik1/mobilerp/internal/database"
	"github.com/prudhvinik1/mobilerp/internal/erpnext"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/prudhvinik1/mobilerp/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Select the storage backend once at startup; everything downstream
	// sees the same Store contract.
	var store *repositories.Store
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create postgres pool: %v", err)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		store = repositories.NewPostgresStore(pool)
	case config.StorageBackendMemory:
		store = repositories.NewMemoryStore()
	}

	if err := database.SeedDemoData(ctx, store); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	gateway := erpnext.NewClient(cfg.ERPNextURL, cfg.ERPNextAPIKey, cfg.ERPNextAPISecret, cfg.ERPNextTimeout)

	authService := services.NewAuthService(store.Users, gateway, cfg.JWTSecret, cfg.JWTExpiry)
	syncService := services.NewSyncService(store.Users, store.Snapshots, store.Stats, gateway)
	taskService := services.NewTaskService(store.Tasks, store.Activities)

	// Initialize HTTP Server
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	handler := api.NewHandler(authService, syncService, taskService, store)
	handler.RegisterRoutes(router)

	// Start Server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
