package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/auditlens/internal/models"
)

// ActorKey is the gin context key for the caller identity forwarded by the gateway.
const ActorKey = "actor"

// Headers set by the authenticating gateway in front of this service.
const (
	ActorIDHeader   = "X-Actor-Id"
	ActorNameHeader = "X-Actor-Name"
	ActorRoleHeader = "X-Actor-Role"
)

// maxActorFieldLen bounds forwarded identity values before they reach the log.
const maxActorFieldLen = 255

// Actor copies the gateway identity headers into the request context.
// Authentication happens upstream; missing headers leave an anonymous actor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ActorKey, models.Actor{
			ID:   headerValue(c, ActorIDHeader),
			Name: headerValue(c, ActorNameHeader),
			Role: headerValue(c, ActorRoleHeader),

			IPAddress: c.ClientIP(),
			UserAgent: truncate(strings.TrimSpace(c.Request.UserAgent())),
		})
		c.Next()
	}
}

// ActorFrom returns the actor stored by Actor, or the zero value.
func ActorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if a, ok := v.(models.Actor); ok {
			return a
		}
	}

	return models.Actor{}
}

func headerValue(c *gin.Context, name string) string {
	return truncate(strings.TrimSpace(c.GetHeader(name)))
}

func truncate(v string) string {
	if len(v) > maxActorFieldLen {
		v = v[:maxActorFieldLen]
		for !utf8.ValidString(v) {
			v = v[:len(v)-1]
		}
	}

	return v
}
