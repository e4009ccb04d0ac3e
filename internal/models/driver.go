package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverStatus string
type VehicleType string

const (
	DriverStatusPending   DriverStatus = "PENDING"
	DriverStatusApproved  DriverStatus = "APPROVED"
	DriverStatusSuspended DriverStatus = "SUSPENDED"

	VehicleTypeBike    VehicleType = "BIKE"
	VehicleTypeCar     VehicleType = "CAR"
	VehicleTypeBicycle VehicleType = "BICYCLE"
)

type VehicleInfo struct {
	Type        VehicleType `json:"vehicle_type" bson:"vehicle_type" validate:"required,oneof=BIKE CAR BICYCLE"`
	Model       string      `json:"vehicle_model" bson:"vehicle_model"`
	NumberPlate string      `json:"vehicle_number_plate" bson:"vehicle_number_plate"`
	Color       string      `json:"vehicle_color" bson:"vehicle_color"`
	Seats       int         `json:"seats" bson:"seats"`
}

// Driver is the service profile layered on top of a user identity. Exactly
// one driver row may exist per user.
type Driver struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Name            string             `json:"name" bson:"name"`
	Email           string             `json:"email" bson:"email"`
	NIDNumber       int64              `json:"nid_number" bson:"nid_number" validate:"required"`
	LicenseNumber   int64              `json:"license_number" bson:"license_number" validate:"required"`
	Vehicle         VehicleInfo        `json:"vehicle_info" bson:"vehicle_info"`
	IsAvailable     bool               `json:"is_available" bson:"is_available" default:"false"`
	Status          DriverStatus       `json:"driver_status" bson:"driver_status" default:"PENDING"`
	IsDeleted       bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	Rating          float64            `json:"rating" bson:"rating" default:"0"`
	TotalRides      int64              `json:"total_rides" bson:"total_rides" default:"0"`
	TotalEarnings   float64            `json:"total_earnings" bson:"total_earnings" default:"0"`
	CurrentLocation *GeoPoint          `json:"current_location,omitempty" bson:"current_location,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
}
