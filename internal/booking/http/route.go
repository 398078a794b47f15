package http

import "github.com/gin-gonic/gin"

// RegisterRoutes exposes booking sessions. Browsing works without signing in;
// binding a session to an account and touching existing appointments does not.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuth gin.HandlerFunc) {
	anyone := g.Group("/booking/sessions", optionalAuth)
	{
		anyone.POST("", h.Create)
		anyone.GET("/:id", h.Get)
		anyone.DELETE("/:id", h.Delete)
		anyone.PUT("/:id/service", h.SelectService)
		anyone.PUT("/:id/barber", h.SelectBarber)
		anyone.PUT("/:id/date", h.SelectDate)
		anyone.PUT("/:id/time", h.SelectTime)
		anyone.POST("/:id/confirm", h.Confirm)
		anyone.POST("/:id/submit", h.Submit)
		anyone.POST("/:id/retry", h.Retry)
		anyone.POST("/:id/cancel/confirm", h.ConfirmCancel)
	}

	signedIn := g.Group("/booking/sessions", authMiddleware)
	{
		signedIn.POST("/edit", h.StartEdit)
		signedIn.POST("/cancel", h.StartCancel)
		signedIn.POST("/:id/authenticate", h.Authenticate)
	}
}
