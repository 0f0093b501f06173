package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prudhvinik1/mobilerp/internal/config"
	"github.com/prudhvinik1/mobilerp/internal/database"
	"github.com/prudhvinik1/mobilerp/internal/offline"
)

// The edge process runs the offline request interceptor in front of the app
// server, in its own execution context. Its only shared state is the cache
// generation store in Redis, which it owns exclusively.
func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadEdgeConfig()
	if err != nil {
		log.Fatalf("Failed to load edge config: %v", err)
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("Invalid upstream URL: %v", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	cache := offline.NewRedisGenerationCache(redisClient)
	interceptor := offline.NewInterceptor(upstream, nil, cache, cfg.CacheGeneration)

	// Replay hook for queued mutating requests; the queue itself lives with
	// whichever client enqueues them.
	interceptor.OnSync(offline.SyncPendingRequests, func(ctx context.Context) error {
		log.Println("Deferred sync triggered, replaying pending requests")
		return nil
	})

	// Activating a new generation evicts every previous one.
	if err := interceptor.Activate(ctx); err != nil {
		log.Fatalf("Failed to activate cache generation: %v", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/edge/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.Method(http.MethodGet, "/edge/metrics", promhttp.Handler())
	router.Post("/edge/sync/{tag}", func(w http.ResponseWriter, r *http.Request) {
		tag := chi.URLParam(r, "tag")
		if err := interceptor.TriggerSync(r.Context(), tag); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	router.Handle("/*", interceptor)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.EdgePort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down edge proxy...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Starting edge proxy on port %s (upstream %s)", cfg.EdgePort, cfg.UpstreamURL)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Edge proxy error: %v", err)
	}

	log.Println("Edge proxy stopped gracefully")
}
