// Package api provides the HTTP handlers for auditlens.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// readinessTimeout bounds all readiness checks together.
const readinessTimeout = 3 * time.Second

// ReadinessCheck is one dependency verified by the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	checks    []ReadinessCheck
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler running checks on readiness.
func NewHealthHandler(log *logrus.Logger, version string, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Liveness handles GET /api/v1/health. It never touches a backing store.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready. Checks run in order; once one fails
// the rest are reported as unknown.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := make(map[string]string, len(h.checks))
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	for _, chk := range h.checks {
		if statusCode != http.StatusOK {
			checks[chk.Name] = "unknown"
			continue
		}

		if err := chk.Check(ctx); err != nil {
			h.log.WithError(err).WithField("check", chk.Name).Error("readiness check failed")
			checks[chk.Name] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable

			continue
		}

		checks[chk.Name] = "ok"
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}
