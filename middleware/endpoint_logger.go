package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/util"
)

// EndpointCallLogger logs each HTTP request as an endpoint event. Events are
// persisted when util.SetSecurityLoggerDB was called during startup.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}
		if tokenID, ok := GetTokenID(c); ok {
			details["session_id"] = tokenID
		}

		actor := ActorFrom(c)
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    actor.User.ID,
			Email:     actor.User.Email,
			Role:      actor.User.Role,
			IP:        actor.IP,
			UserAgent: actor.UserAgent,
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
