package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/gatekeeper"
	"github.com/use-agent/purify-crawl/renderer"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.LoadRenderer()

	// ── 2. Initialise structured logging ────────────────────────────
	log := initLogger(cfg.Log)
	log.Info("purify-renderer starting",
		"host", cfg.Host,
		"port", cfg.Port,
		"headless", cfg.Headless,
		"maxPages", cfg.MaxPages,
	)

	// ── 3. Launch browser and page pool ─────────────────────────────
	browser, err := renderer.Launch(cfg)
	if err != nil {
		log.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}

	// ── 4. Gatekeeper (C7), local to this process since it owns the
	// only DOM the render contract can observe ─────────────────────
	var rulesStore *gatekeeper.Store
	if cfg.Gatekeeper.RulesPath != "" {
		rulesStore = gatekeeper.NewStore(cfg.Gatekeeper.RulesPath)
	}
	gk := gatekeeper.New(rulesStore)

	// ── 5. HTTP server ────────────────────────────────────────────────
	handler := renderer.NewHandler(browser, gk, log)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server forced shutdown", "error", err)
	} else {
		log.Info("HTTP server drained gracefully")
	}

	log.Info("purify-renderer shutting down: closing browser")
	browser.Close()
	log.Info("purify-renderer stopped")
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
