package validators

import (
	"ridehub/internal/models"
)

type DriverApplication struct {
	UserID        string             `json:"user_id" validate:"required,object_id"`
	Name          string             `json:"name" validate:"omitempty,max=100"`
	Email         string             `json:"email" validate:"omitempty,email"`
	NIDNumber     int64              `json:"nid_number" validate:"required"`
	LicenseNumber int64              `json:"license_number" validate:"required"`
	Vehicle       models.VehicleInfo `json:"vehicle_info" validate:"required"`
}

type DriverStatusUpdate struct {
	Status      models.DriverStatus `json:"driver_status" validate:"required,oneof=PENDING APPROVED SUSPENDED"`
	IsAvailable *bool               `json:"is_available"`
}

type DriverProfileUpdate struct {
	Name            string              `json:"name" validate:"omitempty,max=100"`
	Vehicle         *models.VehicleInfo `json:"vehicle_info"`
	IsAvailable     *bool               `json:"is_available"`
	CurrentLocation *models.GeoPoint    `json:"current_location"`
	// Status is rejected for non-admin callers at the service layer.
	Status models.DriverStatus `json:"driver_status" validate:"omitempty,oneof=PENDING APPROVED SUSPENDED"`
}

func ValidateDriverApplication(req *DriverApplication) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateDriverStatusUpdate(req *DriverStatusUpdate) ValidationErrors {
	return ValidateStruct(req)
}
