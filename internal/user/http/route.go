package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the auth endpoints and the caller's own profile.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/signout", authMiddleware, h.SignOut)
		authGroup.POST("/password-reset", h.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	}

	me := g.Group("/me", authMiddleware)
	{
		me.GET("", h.Me)
		me.GET("/profile", h.GetProfile)
		me.PATCH("/profile", h.UpdateProfile)
	}
}
