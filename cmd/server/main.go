// Command main is the entry point for the PuppyTalk backend server.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"puppytalk/internal/bootstrap"
	"puppytalk/internal/config"
	"puppytalk/internal/database"
	"puppytalk/internal/observability"
	"puppytalk/internal/server"
	"puppytalk/internal/storage"
)

// @title PuppyTalk API
// @version 1.0
// @description Community board for dog owners: accounts, posts with images, comments and likes.

// @contact.name API Support
// @contact.email support@puppytalk.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session_id
// @description Opaque session token set by POST /auth/login.

func main() {
	seedPreset := flag.String("seed", "", "seed an empty database with this preset (development only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "puppytalk-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SeedPreset: *seedPreset})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close(db)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb, store)
	if err != nil {
		_ = database.Close(db)
		log.Fatalf("Failed to create server: %v", err)
	}

	sweeperDone := srv.Sessions().StartSweeper(ctx, cfg.SessionCleanupInterval())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
		stop()
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-sweeperDone
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}
