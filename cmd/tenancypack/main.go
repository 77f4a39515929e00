package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"tenancypack/internal/config"
	"tenancypack/internal/http/server"
	"tenancypack/internal/infra/logging"
	"tenancypack/internal/infra/ratelimit"
	"tenancypack/internal/infra/redisprobe"
)

func main() {
	cfg := config.Load()

	if err := ensureLogDir(cfg.Logger.File); err != nil {
		logging.Error("Failed to create log directory", "error", err)
	}
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	if cfg.Pack.ScratchDir != "" {
		if err := os.MkdirAll(cfg.Pack.ScratchDir, 0o755); err != nil {
			logging.Error("Failed to create scratch directory", "dir", cfg.Pack.ScratchDir, "error", err)
		}
	}

	probe := redisprobe.New(cfg.Redis)
	defer probe.Close()

	app := server.New(server.Deps{
		Config:   cfg,
		Renderer: server.NewRenderer(cfg),
		Store:    ratelimit.NewStore(cfg.Redis),
		Probe:    probe,
	})

	logging.Info("Starting tenancy pack service",
		"addr", cfg.Server.Host+cfg.Server.Port,
		"engine", cfg.PDF.Engine,
		"strict_validation", cfg.Strict(),
	)

	idleConnsClosed := make(chan struct{})
	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and blocks until a shutdown signal has
// been handled.
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigint)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}

func ensureLogDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
