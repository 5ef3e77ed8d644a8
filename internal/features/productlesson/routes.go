package productlesson

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches product lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	links := router.Group("/product-lessons")

	links.GET("", append(auth, handler.List)...)
	links.POST("", append(auth, handler.Create)...)
	links.GET("/:linkId", append(auth, handler.GetByID)...)
	links.PUT("/:linkId", append(auth, handler.Update)...)
	links.PATCH("/:linkId", append(auth, handler.Update)...)
	links.DELETE("/:linkId", append(auth, handler.Delete)...)
}
