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

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/api"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/config"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/core"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/repository"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/infrastructure/cache"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: error loading .env file: %v", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Optional repositories
	var (
		recorder   repository.RunRecorder
		runs       repository.RunReader
		facilities repository.FacilityRepository
	)
	if cfg.PostgresURL != "" {
		postgresRepo, err := repository.NewPostgresRepository(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer postgresRepo.Close()
		if err := postgresRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare PostgreSQL schema: %v", err)
		}
		recorder = repository.NewPostgresRunRecorder(postgresRepo.DB)
		runs = postgresRepo
		log.Println("PostgreSQL run store initialized")
	}
	if cfg.OverpassURL != "" {
		facilities = repository.NewOverpassRepository(cfg.OverpassURL, cfg.OverpassTimeout)
		log.Printf("Health facility lookup enabled: %s", cfg.OverpassURL)
	}

	service := core.NewOutbreakService(
		cache.New(cfg.CacheTTL, cfg.CacheCleanup),
		recorder,
		runs,
		facilities,
		cfg.SaveRuns,
	)

	handler := api.NewHandler(service, api.Defaults{
		ClusterThreshold:  cfg.ClusterThreshold,
		ClusterResolution: cfg.ClusterResolution,
	})

	// WriteTimeout is left unset, realtime streams last as long as the run.
	srv := &http.Server{
		Handler:           api.NewRouter(handler, cfg.AllowedOrigins),
		Addr:              ":" + cfg.Port,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed")
	}
}
