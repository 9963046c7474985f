// Package api wires the HTTP surface described in spec.md §6: POST
// /scrape, POST /crawl, GET /health, fronted by recovery/logging and
// optional auth/rate-limit middleware, grounded on the teacher's
// api/router.go.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/purify-crawl/api/handler"
	"github.com/use-agent/purify-crawl/api/middleware"
	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/crawler"
	"github.com/use-agent/purify-crawl/orchestrator"
	"github.com/use-agent/purify-crawl/robots"
	"github.com/use-agent/purify-crawl/sitemap"
)

// NewRouter creates a configured Gin engine with all routes and
// middleware.
//
// Middleware chain:
//
//	Global: Recovery -> Logger
//	API:    Auth (if enabled) -> RateLimit
//
// Health is intentionally outside auth so monitoring probes always work.
func NewRouter(orch *orchestrator.Orchestrator, blocklist *crawler.Blocklist, robotsEval *robots.Evaluator, sitemapProc *sitemap.Processor, cfg *config.Config, log *slog.Logger) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health())

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(orch, cfg.Errors, log))
	protected.POST("/crawl", handler.Crawl(orch, blocklist, robotsEval, sitemapProc, cfg.Crawl.MaxConcurrentPages, cfg.Errors, log))

	return r
}
