package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the handlers. The paths mirror the original web
// client's API so it can be pointed at this server unchanged.
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	r.GET("/healthz", h.HandleHealth)

	recipes := r.Group("/recipes")
	{
		recipes.GET("", h.HandleListRoots)
		recipes.POST("", h.HandleCreate)
		recipes.GET("/user/:ownerId", h.HandleListByOwner)

		recipes.GET("/:id", h.HandleGetTree)
		recipes.POST("/:id/versions", h.HandleFork)
		recipes.GET("/:id/recent", h.HandleMostRecent)
		recipes.GET("/:id/mostForked", h.HandleMostForked)

		recipes.GET("/:id/comments", h.HandleListComments)
		recipes.POST("/:id/comments", h.HandleAddComment)
	}
}
