package routes

import (
	"github.com/gin-gonic/gin"

	"ridehub/internal/handlers"
	"ridehub/internal/middleware"
	"ridehub/internal/models"
)

// SetupUserRoutes sets up routes for user profiles, verification and admin
// moderation
func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, jwtSecret string) {
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("/me", userHandler.GetMe)
		users.POST("/otp/send", userHandler.SendOTP)
		users.POST("/otp/verify", userHandler.VerifyOTP)

		admin := users.Group("")
		admin.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.GET("", userHandler.GetAll)
			admin.PATCH("/:id/block", userHandler.Block)
			admin.PATCH("/:id/unblock", userHandler.Unblock)
		}
	}

	adminStats := r.Group("/admin")
	adminStats.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
	{
		adminStats.GET("/stats", userHandler.Stats)
	}
}
