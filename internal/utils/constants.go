package utils

import "time"

// Application Constants
const (
	AppName    = "RideHub"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour

	// OTP
	OTPLength = 6
	OTPExpiry = 3 * time.Minute

	// Ratings
	MinRideRating = 1.0
	MaxRideRating = 5.0

	// Response status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Common error messages
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"
)
