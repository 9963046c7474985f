package handler

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/crawler"
	"github.com/use-agent/purify-crawl/models"
	"github.com/use-agent/purify-crawl/orchestrator"
	"github.com/use-agent/purify-crawl/robots"
	"github.com/use-agent/purify-crawl/sitemap"

	"github.com/use-agent/purify-crawl/abortctx"
)

// Crawl returns a handler for POST /crawl (spec.md §4.11, §6). It builds
// one crawler.Frontier per request, binding the shared orchestrator as
// the frontier's page-scrape function.
func Crawl(orch *orchestrator.Orchestrator, blocklist *crawler.Blocklist, robotsEval *robots.Evaluator, sitemapProc *sitemap.Processor, maxConcurrency int, errCfg config.ErrorExposureConfig, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		norm, err := req.CrawlOptions.Normalize()
		if err != nil {
			respondCrawlError(c, err, errCfg)
			return
		}

		includes, err := compileAny(norm.Includes)
		if err != nil {
			respondCrawlError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid includes pattern", err), errCfg)
			return
		}
		excludes, err := compileAny(norm.Excludes)
		if err != nil {
			respondCrawlError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid excludes pattern", err), errCfg)
			return
		}

		requestID := uuid.NewString()
		reqLog := log.With("requestId", requestID, "url", req.URL)

		scrapePage := func(ctx context.Context, rawURL string, headers map[string]string) (*models.Document, error) {
			opts := norm.ScrapeOptions
			opts.Headers = mergeHeaders(opts.Headers, headers)
			meta := models.NewMeta(requestID, rawURL, opts, reqLog)
			meta.Ctx = ctx
			doc, err := orch.Scrape(meta)
			if err != nil {
				return nil, err
			}
			return doc, nil
		}

		mgr := abortctx.New(c.Request.Context(), 0)
		defer mgr.Release()

		frontier := crawler.New(crawler.Config{
			JobID:                     requestID,
			InitialURL:                req.URL,
			Includes:                  includes,
			Excludes:                  excludes,
			Limit:                     norm.Limit,
			MaxDepth:                  norm.MaxDepth,
			Headers:                   norm.Headers,
			RegexOnFullURL:            norm.RegexOnFullURL,
			AllowSubdomains:           norm.AllowSubdomains,
			AllowExternalContentLinks: norm.AllowExternalContentLinks,
			AllowBackwardCrawling:     norm.AllowBackwardCrawling,
			CheckRobots:               robotsEval != nil,
			RobotsUserAgents:          []string{"*"},
			MaxConcurrency:            maxConcurrency,
		}, scrapePage, blocklist, robotsEval, sitemapProc)

		resp := frontier.Run(mgr.Context())
		resp.RequestID = requestID

		status := http.StatusOK
		if !resp.Success {
			status = http.StatusBadGateway
		}
		c.JSON(status, resp)
	}
}

func respondCrawlError(c *gin.Context, err error, errCfg config.ErrorExposureConfig) {
	se, ok := err.(*models.ScrapeError)
	if !ok {
		se = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	status := http.StatusBadGateway
	if se.Code == models.ErrCodeInvalidInput {
		status = http.StatusBadRequest
	}
	c.JSON(status, models.CrawlResponse{
		Success: false,
		Error:   se.ToDetail(errCfg.ExposeDetails),
	})
}

// compileAny joins a list of regex patterns with alternation, matching
// the wire contract's "includes"/"excludes" arrays. Returns nil for an
// empty list (no restriction).
func compileAny(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return regexp.Compile(strings.Join(patterns, "|"))
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
