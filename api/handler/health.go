package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/purify-crawl/models"
)

// Health returns a handler for GET /health.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
	}
}
