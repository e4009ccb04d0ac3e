package routes

import (
	"github.com/gin-gonic/gin"

	"ridehub/internal/handlers"
	"ridehub/internal/middleware"
	"ridehub/internal/models"
)

// SetupDriverRoutes sets up routes for driver onboarding and profiles
func SetupDriverRoutes(r *gin.RouterGroup, driverHandler *handlers.DriverHandler, jwtSecret string) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.AuthRequired(jwtSecret))
	{
		drivers.POST("/apply", middleware.RoleRequired(models.RoleRider), driverHandler.Apply)
		drivers.GET("/me", middleware.RoleRequired(models.RoleDriver), driverHandler.GetMe)
		drivers.PATCH("/me", middleware.RoleRequired(models.RoleDriver), driverHandler.UpdateProfile)

		// Admin moderation
		admin := drivers.Group("")
		admin.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.GET("", driverHandler.GetAll)
			admin.GET("/:id", driverHandler.GetByID)
			admin.PATCH("/:id/status", driverHandler.SetStatus)
		}
	}
}
