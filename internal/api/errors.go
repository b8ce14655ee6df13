package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/httputil"
	"github.com/persistorai/auditlens/internal/metrics"
	"github.com/persistorai/auditlens/internal/middleware"
	"github.com/persistorai/auditlens/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidFilter = "invalid_filter"
	ErrCodeInternalError = "internal_error"
	ErrCodeTimeout       = "timeout"
	ErrCodeNotFound      = "not_found"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// errorResponder maps service errors onto the failure envelope.
type errorResponder struct {
	log *logrus.Logger
	// exposeErrors adds the internal error text to the envelope. Never set in production.
	exposeErrors bool
}

// fail writes the failure envelope for err. Filter errors name the offending
// field; store failures get a generic message and are logged in full.
func (r errorResponder) fail(c *gin.Context, op string, err error) {
	body := httputil.ErrorBody{}
	status := http.StatusInternalServerError

	var fe *models.FilterError
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadRequest
		body.Code = ErrCodeInvalidFilter
		body.Message = fe.Error()
		body.Field = fe.Field
	case errors.Is(err, models.ErrInvalidFilter):
		status = http.StatusBadRequest
		body.Code = ErrCodeInvalidFilter
		body.Message = err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body.Code = ErrCodeTimeout
		body.Message = "request timed out"
	default:
		body.Code = ErrCodeInternalError
		body.Message = "internal server error"
	}

	entry := r.log.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"request_id": c.GetString(middleware.RequestIDKey),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	if r.exposeErrors && status >= http.StatusInternalServerError {
		body.Error = err.Error()
	}

	metrics.ErrorsTotal.WithLabelValues(body.Code).Inc()
	httputil.Abort(c, status, body)
}
