package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goaltrack/internal/config"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"models": gin.H{
				"large":     cfg.OpenAI.LargeModel,
				"small":     cfg.OpenAI.SmallModel,
				"embedding": cfg.OpenAI.Embedding.Model,
				"dimension": cfg.OpenAI.Embedding.Dimension,
			},
		})
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
