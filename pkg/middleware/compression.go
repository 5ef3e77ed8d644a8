package middleware

import (
	"compress/gzip"

	ginzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Compression levels
const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// Compression gzips responses for clients that accept it. The metrics
// endpoint is excluded since Prometheus negotiates its own encoding.
func Compression(level int) gin.HandlerFunc {
	return ginzip.Gzip(level, ginzip.WithExcludedPaths([]string{"/metrics"}))
}
