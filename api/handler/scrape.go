package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/purify-crawl/abortctx"
	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/models"
	"github.com/use-agent/purify-crawl/orchestrator"
)

// Scrape returns a handler for POST /scrape.
//
// Flow:
//  1. Parse & validate the request, applying spec.md §3 defaults.
//  2. Build a Meta (request id, feature set, abort/timeout manager).
//  3. Run the orchestrator's engine-fallback pipeline.
//  4. Map the result (or error) to the response envelope.
func Scrape(orch *orchestrator.Orchestrator, errCfg config.ErrorExposureConfig, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		opts, err := req.ScrapeOptions.Normalize()
		if err != nil {
			respondScrapeError(c, "", err, errCfg)
			return
		}

		requestID := uuid.NewString()
		meta := models.NewMeta(requestID, req.URL, opts, log.With("requestId", requestID, "url", req.URL))

		mgr := abortctx.New(c.Request.Context(), opts.Timeout)
		defer mgr.Release()
		meta.Ctx = mgr.Context()
		meta.CancelSignal = mgr

		doc, scrapeErr := orch.Scrape(meta)
		if scrapeErr != nil {
			respondScrapeError(c, requestID, scrapeErr, errCfg)
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:   true,
			Document:  doc,
			RequestID: requestID,
		})
	}
}

// respondScrapeError writes the failure envelope for POST /scrape
// (spec.md §6: validation failures are 400, everything else is 502).
func respondScrapeError(c *gin.Context, requestID string, err error, errCfg config.ErrorExposureConfig) {
	se, ok := err.(*models.ScrapeError)
	if !ok {
		se = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	status := http.StatusBadGateway
	if se.Code == models.ErrCodeInvalidInput {
		status = http.StatusBadRequest
	}

	c.JSON(status, models.ScrapeResponse{
		Success:   false,
		RequestID: requestID,
		Error:     se.ToDetail(errCfg.ExposeDetails),
	})
}
