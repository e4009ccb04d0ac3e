package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridehub/internal/middleware"
	"ridehub/internal/services"
	"ridehub/internal/utils"
	"ridehub/internal/validators"
)

type DriverHandler struct {
	driverService services.DriverService
}

func NewDriverHandler(driverService services.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// Apply handles POST /drivers/apply
func (h *DriverHandler) Apply(c *gin.Context) {
	var req validators.DriverApplication
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateDriverApplication(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	driver, err := h.driverService.Apply(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Driver application submitted", driver)
}

// SetStatus handles PATCH /drivers/:id/status
func (h *DriverHandler) SetStatus(c *gin.Context) {
	driverID, ok := h.driverID(c)
	if !ok {
		return
	}

	var req validators.DriverStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateDriverStatusUpdate(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	driver, err := h.driverService.SetDriverStatus(c.Request.Context(), driverID, &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver status updated", driver)
}

// GetMe handles GET /drivers/me
func (h *DriverHandler) GetMe(c *gin.Context) {
	driver, err := h.driverService.GetMe(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver profile retrieved", driver)
}

// UpdateProfile handles PATCH /drivers/me
func (h *DriverHandler) UpdateProfile(c *gin.Context) {
	var req validators.DriverProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if errs := validators.ValidateStruct(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	driver, err := h.driverService.UpdateProfile(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver profile updated", driver)
}

// GetByID handles GET /drivers/:id
func (h *DriverHandler) GetByID(c *gin.Context) {
	driverID, ok := h.driverID(c)
	if !ok {
		return
	}

	driver, err := h.driverService.GetByID(c.Request.Context(), driverID, middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver retrieved", driver)
}

// GetAll handles GET /drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	drivers, meta, err := h.driverService.GetAll(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Drivers retrieved", drivers, &utils.Meta{Pagination: meta})
}

func (h *DriverHandler) driverID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid driver id")
		return primitive.NilObjectID, false
	}
	return id, true
}
