package productaccess

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches product access endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth []gin.HandlerFunc) {
	accesses := router.Group("/product-access")

	accesses.GET("", append(auth, handler.List)...)
	accesses.POST("", append(auth, handler.Create)...)
	accesses.GET("/:accessId", append(auth, handler.GetByID)...)
	accesses.PUT("/:accessId", append(auth, handler.Update)...)
	accesses.PATCH("/:accessId", append(auth, handler.Update)...)
	accesses.DELETE("/:accessId", append(auth, handler.Delete)...)
}
