package validators

import (
	"ridehub/internal/models"
)

type RideRequest struct {
	RiderID     string          `json:"rider_id" validate:"required,object_id"`
	Pickup      models.Location `json:"pickup_location" validate:"required"`
	Destination models.Location `json:"destination" validate:"required"`
}

type RideStatusUpdateRequest struct {
	Status       models.RideStatus `json:"status" validate:"required"`
	CancelReason string            `json:"cancel_reason" validate:"omitempty,max=255"`
}

type RideCancelRequest struct {
	Reason string `json:"cancel_reason" validate:"omitempty,max=255"`
}

type FeedbackRequest struct {
	Feedback string   `json:"feedback" validate:"required,max=1000"`
	Rating   *float64 `json:"rating" validate:"omitempty,rating_value"`
}

func ValidateRideRequest(req *RideRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateRideStatusUpdate(req *RideStatusUpdateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if !req.Status.IsValid() {
		errors = append(errors, ValidationError{
			Field:   "status",
			Tag:     "oneof",
			Message: "unknown ride status",
		})
	}

	return errors
}

func ValidateFeedbackRequest(req *FeedbackRequest) ValidationErrors {
	return ValidateStruct(req)
}
