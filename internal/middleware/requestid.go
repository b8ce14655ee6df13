package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestID generates a server-side UUID for every request. A gateway-supplied
// X-Request-ID is kept as "upstream_request_id" so both can be correlated in logs.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()

		if upstream := c.GetHeader(RequestIDHeader); upstream != "" {
			log.WithFields(logrus.Fields{
				"request_id":          id,
				"upstream_request_id": upstream,
			}).Debug("upstream request ID mapped to server ID")
			c.Set("upstream_request_id", upstream)
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
