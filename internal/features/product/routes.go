package product

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches product endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	products := router.Group("/products")

	products.GET("", append(auth, handler.List)...)
	products.POST("", append(auth, handler.Create)...)
	products.GET("/:productId", append(auth, handler.GetByID)...)
	products.PUT("/:productId", append(auth, handler.Update)...)
	products.PATCH("/:productId", append(auth, handler.Update)...)
	products.DELETE("/:productId", append(auth, handler.Delete)...)
}
