package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/veridoc"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	veridoc veridoc.Inspector
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(v veridoc.Inspector) *HealthHandler {
	return &HealthHandler{
		veridoc: v,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "veridoc",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - the service is ready once a corpus
// snapshot is being served.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   "veridoc",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}
	checks := response["checks"].(gin.H)

	if h.veridoc == nil {
		checks["pipeline"] = gin.H{"status": "unhealthy", "error": "client not initialized"}
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	stats := h.veridoc.Stats()
	if stats.Documents == 0 {
		checks["corpus"] = gin.H{"status": "unhealthy", "error": "no documents loaded"}
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	checks["corpus"] = gin.H{"status": "healthy", "documents": stats.Documents}
	c.JSON(http.StatusOK, response)
}

// Stats handles GET /stats
func (h *HealthHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.veridoc.Stats())
}
