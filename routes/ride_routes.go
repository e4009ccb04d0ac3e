package routes

import (
	"github.com/gin-gonic/gin"

	"ridehub/internal/handlers"
	"ridehub/internal/middleware"
	"ridehub/internal/models"
)

// SetupRideRoutes sets up routes for the ride lifecycle
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, jwtSecret string) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret))
	{
		// Rider operations
		rides.POST("/request", middleware.RoleRequired(models.RoleRider), rideHandler.RequestRide)
		rides.GET("/me", rideHandler.GetMyRides)
		rides.POST("/:id/feedback", middleware.RoleRequired(models.RoleRider), rideHandler.SubmitFeedback)

		// Driver operations
		rides.GET("/available", middleware.RoleRequired(models.RoleDriver), rideHandler.GetAvailableRides)
		rides.POST("/:id/accept", middleware.RoleRequired(models.RoleDriver), rideHandler.AcceptRide)

		// Shared lifecycle operations
		rides.PATCH("/:id/status", rideHandler.UpdateRideStatus)
		rides.POST("/:id/cancel", rideHandler.CancelRide)

		rides.GET("/:id", rideHandler.GetRide)
		rides.GET("", middleware.RoleRequired(models.RoleDriver, models.RoleAdmin, models.RoleSuperAdmin), rideHandler.GetAllRides)
	}
}
