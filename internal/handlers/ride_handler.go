package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridehub/internal/middleware"
	"ridehub/internal/services"
	"ridehub/internal/utils"
	"ridehub/internal/validators"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRide handles POST /rides/request
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req validators.RideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateRideRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride requested successfully", ride)
}

// GetAvailableRides handles GET /rides/available
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	rides, meta, err := h.rideService.GetAvailableRides(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Available rides retrieved", rides, &utils.Meta{Pagination: meta})
}

// AcceptRide handles POST /rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	detail, err := h.rideService.AcceptRide(c.Request.Context(), rideID, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride accepted successfully", detail)
}

// UpdateRideStatus handles PATCH /rides/:id/status
func (h *RideHandler) UpdateRideStatus(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var req validators.RideStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateRideStatusUpdate(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	detail, err := h.rideService.UpdateRideStatus(c.Request.Context(), rideID, &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride status updated", detail)
}

// CancelRide handles POST /rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var req validators.RideCancelRequest
	// The body is optional; cancelling without a reason is fine.
	_ = c.ShouldBindJSON(&req)

	detail, err := h.rideService.CancelRide(c.Request.Context(), rideID, req.Reason, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride cancelled", detail)
}

// SubmitFeedback handles POST /rides/:id/feedback
func (h *RideHandler) SubmitFeedback(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var req validators.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateFeedbackRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	result, err := h.rideService.SubmitFeedback(c.Request.Context(), rideID, &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Feedback submitted", result)
}

// GetMyRides handles GET /rides/me
func (h *RideHandler) GetMyRides(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	rides, meta, err := h.rideService.GetRidesForRider(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved", rides, &utils.Meta{Pagination: meta})
}

// GetAllRides handles GET /rides
func (h *RideHandler) GetAllRides(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	rides, meta, err := h.rideService.GetAllRides(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved", rides, &utils.Meta{Pagination: meta})
}

// GetRide handles GET /rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	detail, err := h.rideService.GetRide(c.Request.Context(), rideID, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved", detail)
}

func (h *RideHandler) rideID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid ride id")
		return primitive.NilObjectID, false
	}
	return id, true
}
