package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/kaizen/internal/config"
	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and the daily progress sync",
	RunE:  runServe,
}

// openEngine loads config, opens the configured backend and builds an
// engine over it. The returned cleanup closes the backend.
func openEngine() (*engine.Engine, config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config: %w", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, cfg, nil, err
	}
	backend, closeBackend, err := cfg.OpenBackend()
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("open storage: %w", err)
	}
	cleanup := func() {
		if err := closeBackend(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}
	return engine.New(backend, opts), cfg, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, cfg, cleanup, err := openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Sync.Enabled {
		if err := eng.StartTimer(cfg.Sync.Schedule); err != nil {
			return err
		}
		defer eng.Stop()
	}

	srv := server.New(eng, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		dir, _ := cfg.DataDir()
		logger.Info("kaizen serving", "addr", addr, "backend", cfg.Storage.Backend, "data_dir", dir,
			"sync", cfg.Sync.Enabled, "schedule", cfg.Sync.Schedule, "mode", eng.SyncMode())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
