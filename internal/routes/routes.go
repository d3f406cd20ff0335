package routes

import (
	"github.com/gin-gonic/gin"

	"shopbe/internal/handlers"
	"shopbe/internal/middleware"
	"shopbe/internal/services"
)

func SetupRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, tokens services.TokenService) *gin.Engine {
	auth := r.Group("/auth")

	// ---- public
	auth.POST("/register", authHandler.Register)
	auth.POST("/otp", authHandler.SendOTP)
	auth.POST("/login", authHandler.Login)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/google-link", authHandler.GoogleLink)
	auth.GET("/google/callback", authHandler.GoogleCallback)

	// ---- behind the access token
	protected := auth.Group("", middleware.AuthMiddleware(tokens))
	{
		protected.POST("/refresh-token", authHandler.RefreshToken)
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
	}

	return r
}
