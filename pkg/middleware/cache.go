package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheControl marks API responses as uncacheable. Progress and access data
// change per user and per request.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}

		c.Next()
	}
}
