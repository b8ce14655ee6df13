package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/httputil"
)

// DashboardHandler serves the dashboard endpoints.
type DashboardHandler struct {
	repo DashboardRepository
	errorResponder
}

// NewDashboardHandler creates a DashboardHandler. exposeErrors adds internal
// error detail to failure envelopes.
func NewDashboardHandler(repo DashboardRepository, log *logrus.Logger, exposeErrors bool) *DashboardHandler {
	return &DashboardHandler{repo: repo, errorResponder: errorResponder{log: log, exposeErrors: exposeErrors}}
}

// Security handles GET /api/v1/dashboards/security.
func (h *DashboardHandler) Security(c *gin.Context) {
	d, err := h.repo.Security(c.Request.Context(), c.Query("windowSize"))
	if err != nil {
		h.fail(c, "dashboard.security", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, d)
}

// Performance handles GET /api/v1/dashboards/performance.
func (h *DashboardHandler) Performance(c *gin.Context) {
	d, err := h.repo.Performance(c.Request.Context(), c.Query("windowSize"))
	if err != nil {
		h.fail(c, "dashboard.performance", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, d)
}

// Analytics handles GET /api/v1/dashboards/analytics.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	d, err := h.repo.Analytics(c.Request.Context(), c.Query("windowSize"))
	if err != nil {
		h.fail(c, "dashboard.analytics", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, d)
}

// Health handles GET /api/v1/dashboards/health.
func (h *DashboardHandler) Health(c *gin.Context) {
	d, err := h.repo.Health(c.Request.Context())
	if err != nil {
		h.fail(c, "dashboard.health", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, d)
}
