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

	"github.com/use-agent/purify-crawl/api"
	"github.com/use-agent/purify-crawl/cache"
	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/crawler"
	"github.com/use-agent/purify-crawl/engine"
	"github.com/use-agent/purify-crawl/gatekeeper"
	"github.com/use-agent/purify-crawl/httpx"
	"github.com/use-agent/purify-crawl/orchestrator"
	"github.com/use-agent/purify-crawl/robots"
	"github.com/use-agent/purify-crawl/sitemap"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	log := initLogger(cfg.Log)
	log.Info("purify-crawl starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"renderConfigured", cfg.Render.MicroserviceURL != "",
	)

	// ── 3. Secure Dispatcher fabric (C1) and conditional-GET cache (C2) ──
	fabric := httpx.NewFabric(cfg.Proxy.AllowLocalHosts, httpx.ProxyConfig{
		URL:      cfg.Proxy.Server,
		Username: cfg.Proxy.Username,
		Password: cfg.Proxy.Password,
	})
	cg := cache.NewConditionalGET(cfg.Cache.MaxEntries)

	// ── 4. Acquisition engines (C2-C5) ───────────────────────────────
	fetchEngine := engine.NewFetchEngine(fabric, cg)
	pdfEngine := engine.NewPDFEngine(fabric)
	documentEngine := engine.NewDocumentEngine(fabric)

	var browserEngine *engine.BrowserEngine
	if cfg.Render.MicroserviceURL != "" {
		browserEngine = engine.NewBrowserEngine(cfg.Render.MicroserviceURL, true)
		log.Info("browser engine enabled", "microserviceURL", cfg.Render.MicroserviceURL)
	}

	// ── 5. Gatekeeper (C7) and transformers (C9) ─────────────────────
	var rulesStore *gatekeeper.Store
	if cfg.Gatekeeper.RulesPath != "" {
		rulesStore = gatekeeper.NewStore(cfg.Gatekeeper.RulesPath)
	}
	gk := gatekeeper.New(rulesStore)
	cl := cleaner.New()

	// ── 6. Fallback Orchestrator (C8) ─────────────────────────────────
	orch := orchestrator.New(fetchEngine, browserEngine, pdfEngine, documentEngine, gk, cl)

	// ── 7. Crawler dependencies: blocklist (process-wide), robots (C10), sitemap (C11) ──
	blocklist := crawler.NewBlocklist(cfg.Blocklist.Domains, cfg.Blocklist.Whitelist)
	robotsDispatcher := fabric.Get(httpx.Key{SkipTLS: false, AllowCookies: false})
	robotsEval := robots.New(robotsDispatcher)
	sitemapProc := sitemap.New(robotsDispatcher, sitemap.SitemapLimit)

	// ── 8. Router ──────────────────────────────────────────────────────
	router := api.NewRouter(orch, blocklist, robotsEval, sitemapProc, cfg, log)

	// ── 9. HTTP server ─────────────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 10. Graceful shutdown ────────────────────────────────────────
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

	log.Info("purify-crawl stopped")
}

// initLogger configures slog based on the LogConfig and returns the
// process-wide logger (also installed as slog's default).
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
