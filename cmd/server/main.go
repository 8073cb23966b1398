package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docmind/internal/api"
	"github.com/dgallion1/docmind/internal/app"
	"github.com/dgallion1/docmind/internal/config"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	_ = godotenv.Load()

	cfgPath := flag.String("config", envOr("DOCMIND_CONFIG", "config.yaml"), "path to YAML config (optional)")
	preload := flag.String("document", "", "document to ingest at startup (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("pipeline not ready", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if *preload != "" {
		sum, err := a.Pipeline.IngestFile(ctx, *preload)
		if err != nil {
			log.Error("startup ingest failed", "path", *preload, "error", err)
			os.Exit(1)
		}
		log.Info("startup ingest complete", "document", sum.Document, "chunks", sum.ChunksCount)
	}

	// Initialize HTTP server.
	srv := api.NewServer(a.Pipeline, a.Stats, cfg.Generation.Model, log, cfg.Server)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // uploads are ingested synchronously
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docmind", "port", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
