package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridehub/internal/middleware"
	"ridehub/internal/models"
	"ridehub/internal/services"
	"ridehub/internal/utils"
)

type UserHandler struct {
	userService services.UserService
	otpService  services.OTPService
}

func NewUserHandler(userService services.UserService, otpService services.OTPService) *UserHandler {
	return &UserHandler{
		userService: userService,
		otpService:  otpService,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved", user)
}

// GetAll handles GET /users
func (h *UserHandler) GetAll(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, meta, err := h.userService.GetAllUsers(c.Request.Context(), middleware.GetActor(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved", users, &utils.Meta{Pagination: meta})
}

// Block handles PATCH /users/:id/block
func (h *UserHandler) Block(c *gin.Context) {
	h.setBlocked(c, models.Blocked, "User blocked")
}

// Unblock handles PATCH /users/:id/unblock
func (h *UserHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, models.Unblocked, "User unblocked")
}

func (h *UserHandler) setBlocked(c *gin.Context, blocked models.BlockedStatus, message string) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid user id")
		return
	}

	user, serviceErr := h.userService.SetBlocked(c.Request.Context(), userID, blocked, middleware.GetActor(c))
	if serviceErr != nil {
		utils.HandleServiceError(c, serviceErr)
		return
	}

	utils.SuccessResponse(c, message, user)
}

// Stats handles GET /admin/stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Platform stats retrieved", stats)
}

// SendOTP handles POST /users/otp/send
func (h *UserHandler) SendOTP(c *gin.Context) {
	if err := h.otpService.Send(c.Request.Context(), middleware.GetActor(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Verification code sent", nil)
}

// VerifyOTP handles POST /users/otp/verify
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "BAD_REQUEST", "Invalid request body")
		return
	}

	if err := h.otpService.Verify(c.Request.Context(), req.Code, middleware.GetActor(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User verified", nil)
}
