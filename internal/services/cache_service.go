package services

import (
	"context"
	"fmt"
	"time"
)

// CacheService is the narrow cache contract the repositories and the OTP
// service consume. pkg/cache provides the redis implementation.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

func DriverCacheKey(driverID string) string {
	return fmt.Sprintf("driver:%s", driverID)
}

func DriverByUserCacheKey(userID string) string {
	return fmt.Sprintf("driver:user:%s", userID)
}

func OTPCacheKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}
