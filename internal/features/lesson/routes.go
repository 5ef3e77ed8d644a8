package lesson

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	lessons := router.Group("/lessons")

	lessons.GET("", append(auth, handler.List)...)
	lessons.POST("", append(auth, handler.Create)...)
	lessons.GET("/:lessonId", append(auth, handler.GetByID)...)
	lessons.PUT("/:lessonId", append(auth, handler.Update)...)
	lessons.PATCH("/:lessonId", append(auth, handler.Update)...)
	lessons.DELETE("/:lessonId", append(auth, handler.Delete)...)
}
