package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceKeyHeader carries the elevated credential of administrative callers.
const ServiceKeyHeader = "X-Service-Key"

// ServiceKeyAuth admits requests whose X-Service-Key equals serviceKey.
// An empty serviceKey disables the guarded routes entirely.
func ServiceKeyAuth(serviceKey string) gin.HandlerFunc {
	expected := []byte(serviceKey)
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if len(expected) == 0 {
			logger.Error("Administrative endpoint called but SERVICE_ROLE_KEY is not configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "administrative endpoints are not configured"})
			return
		}

		provided := []byte(c.GetHeader(ServiceKeyHeader))
		if len(provided) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			logger.Warn("Rejected administrative request with invalid service key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service key"})
			return
		}

		c.Set("authMethod", "service_key")
		c.Next()
	}
}
