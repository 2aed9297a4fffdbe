package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/critree/internal/api"
	"github.com/dgallion1/critree/internal/config"
	"github.com/dgallion1/critree/internal/pathstore"
	"github.com/dgallion1/critree/internal/pipeline"
	"github.com/dgallion1/critree/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := st.Migrate(ctx); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}

	// Optional pathstore mirror.
	var (
		ps     *pathstore.Client
		mirror *pathstore.Mirror
	)
	if cfg.MirrorEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		mirror = pathstore.NewMirror(ps, log)
		log.Info("pathstore mirror enabled", "url", cfg.PathstoreURL)
	}

	// Initialize pipeline. A nil *Mirror must not become a non-nil interface.
	var pipeMirror pipeline.CriteriaMirror
	if mirror != nil {
		pipeMirror = mirror
	}
	orch := pipeline.NewOrchestrator(cfg, st, pipeMirror, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, st, mirror, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
		st.Close()
	}()

	log.Info("starting critree", "port", cfg.Port, "driver", cfg.DatabaseDriver, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
