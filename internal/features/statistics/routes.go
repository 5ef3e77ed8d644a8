package statistics

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the statistics endpoint. It must be registered
// alongside the product routes so /products/statistics wins over /products/:productId.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	router.GET("/products/statistics", append(auth, handler.List)...)
}
