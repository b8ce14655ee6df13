package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/auditlens/internal/httputil"
	"github.com/persistorai/auditlens/internal/metrics"
)

// respondError delegates to the shared envelope and counts the error code.
func respondError(c *gin.Context, code int, errCode, message string) {
	metrics.ErrorsTotal.WithLabelValues(errCode).Inc()
	httputil.RespondError(c, code, errCode, message)
}
