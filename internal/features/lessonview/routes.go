package lessonview

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches lesson view endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	views := router.Group("/lesson-views")

	views.GET("", append(auth, handler.List)...)
	views.POST("", append(auth, handler.Create)...)
	views.GET("/:viewId", append(auth, handler.GetByID)...)
	views.PUT("/:viewId", append(auth, handler.Update)...)
	views.PATCH("/:viewId", append(auth, handler.Update)...)
	views.DELETE("/:viewId", append(auth, handler.Delete)...)
}
