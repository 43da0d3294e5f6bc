package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency for the readiness endpoint
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	BaseHandler
	checks []HealthCheck
}

// NewHealthHandler creates a new HealthHandler with the given dependency checks
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness reports that the process is up
// GET /health
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness reports whether all dependencies are reachable. Any failing
// check turns the response into a 503 so the load balancer stops routing.
// GET /health/ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "ok"
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		results[check.Name] = "ok"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"checks":    results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
