package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/memory"
	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/postgres"
	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/sqlite"
	"github.com/developerKhusanjon/ChocoSlot/internal/app/store"
	"github.com/developerKhusanjon/ChocoSlot/internal/app/sweeper"
	"github.com/developerKhusanjon/ChocoSlot/internal/config"
	"github.com/developerKhusanjon/ChocoSlot/internal/interfaces"
	"github.com/developerKhusanjon/ChocoSlot/internal/metrics"

	httpAdapter "github.com/developerKhusanjon/ChocoSlot/internal/adapter/http"
	redisAdapter "github.com/developerKhusanjon/ChocoSlot/internal/adapter/redis"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx := context.Background()

	// Initialize logger
	lgr := logger.New("chocoslot")

	// Open the persistent key-value store
	kv, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer kv.Close()

	lgr.Info("storage_opened", "Persistent storage ready", "startup", map[string]interface{}{
		"backend": cfg.Storage.Backend,
	})

	// Build the domain store
	opts := []store.Option{}
	if cfg.Storage.Seed {
		opts = append(opts, store.WithSeedData())
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, store.WithMetrics(metrics.NewRecorder(prometheus.DefaultRegisterer)))
	}

	svc := store.New(kv, lgr, opts...)
	if err := svc.Load(ctx); err != nil {
		log.Fatalf("Failed to load store: %v", err)
	}

	// Start the expiry sweeps
	sw := sweeper.New(svc, lgr,
		time.Duration(cfg.Sweeps.CanceledIntervalSeconds)*time.Second,
		time.Duration(cfg.Sweeps.DeliveredIntervalSeconds)*time.Second,
		time.Duration(cfg.Sweeps.CakesIntervalSeconds)*time.Second,
	)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}

	// Initialize HTTP handlers
	cakeHandler := httpAdapter.NewCakeHandler(svc, lgr)
	reservationHandler := httpAdapter.NewReservationHandler(svc, lgr)
	dashboardHandler := httpAdapter.NewDashboardHandler(svc, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/cakes", cakeHandler.HandleCakes)
	mux.HandleFunc("/cakes/", cakeHandler.HandleCakeByID)
	mux.HandleFunc("/reservations", reservationHandler.HandleReservations)
	mux.HandleFunc("/reservations/today", reservationHandler.HandleToday)
	mux.HandleFunc("/reservations/", reservationHandler.HandleReservationByID)
	mux.HandleFunc("/stats", dashboardHandler.HandleStats)
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	// Apply middleware
	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("ChocoSlot started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":    cfg.Server.Port,
		"backend": cfg.Storage.Backend,
	})

	// Graceful shutdown. ListenAndServe возвращается сразу после вызова
	// server.Shutdown, поэтому main обязан дождаться конца остановки,
	// иначе defer закроет хранилище под незавершенными записями.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down ChocoSlot", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during HTTP shutdown", "shutdown", nil, err)
		}
		if err := sw.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error stopping sweeper", "shutdown", nil, err)
		}
		// Let in-flight write-throughs land before the process exits
		svc.Flush()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
		return
	}
	<-shutdownDone
}

func openStorage(ctx context.Context, cfg *config.Config, lgr logger.Logger) (interfaces.KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlite.Open(cfg.Storage.Path)
	case "postgres":
		return postgres.Connect(ctx, cfg.Storage.Postgres)
	case "redis":
		return redisAdapter.Connect(ctx, cfg.Storage.Redis)
	case "memory":
		lgr.Warn("ephemeral_storage", "Memory backend keeps no data across restarts", "startup", nil)
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
