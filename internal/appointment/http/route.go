package http

import "github.com/gin-gonic/gin"

// RegisterRoutes exposes availability publicly and the caller's own appointments behind auth.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuth gin.HandlerFunc) {
	availability := g.Group("/availability")
	{
		availability.GET("/dates", h.ListDates)
		availability.GET("/slots", optionalAuth, h.ListSlots)
	}

	appointments := g.Group("/appointments", authMiddleware)
	{
		appointments.GET("", h.ListMine)
		appointments.GET("/:id", h.Get)
	}
}
