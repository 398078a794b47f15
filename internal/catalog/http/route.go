package http

import "github.com/gin-gonic/gin"

// RegisterRoutes exposes the public catalog.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/services", h.ListServices)
	g.GET("/services/:id", h.GetService)
	g.GET("/barbers", h.ListBarbers)
}
