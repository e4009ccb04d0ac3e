package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"
	"ridehub/pkg/logger"
	"ridehub/pkg/sms"
)

type OTPService interface {
	Send(ctx context.Context, actor *models.Actor) error
	Verify(ctx context.Context, code string, actor *models.Actor) error
}

type otpService struct {
	users  interfaces.UserRepository
	cache  CacheService
	sms    sms.Provider
	logger *logger.Logger
}

func NewOTPService(
	users interfaces.UserRepository,
	cache CacheService,
	smsProvider sms.Provider,
	logger *logger.Logger,
) OTPService {
	return &otpService{
		users:  users,
		cache:  cache,
		sms:    smsProvider,
		logger: logger,
	}
}

// Send generates a one-time code for the actor's phone number and delivers
// it over SMS. The code lives in the cache under the user's phone for the
// OTP expiry window; resending replaces the previous code.
func (s *otpService) Send(ctx context.Context, actor *models.Actor) error {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return utils.NewNotFound("User not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsVerified {
		return utils.NewBadRequest("User is already verified")
	}
	if user.Phone == "" {
		return utils.NewBadRequest("No phone number on record")
	}

	code, err := generateOTP(utils.OTPLength)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.cache.Set(ctx, OTPCacheKey(user.Phone), code, utils.OTPExpiry); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if _, err := s.sms.SendSMS(ctx, &sms.Request{
		To:      user.Phone,
		Message: fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.", utils.AppName, code, int(utils.OTPExpiry.Minutes())),
		Type:    "otp",
	}); err != nil {
		s.logger.WithUserID(user.ID).WithError(err).Error("otp delivery failed")
		return utils.NewBadRequest("Could not deliver the verification code")
	}

	s.logger.WithUserID(user.ID).Info("otp sent")

	return nil
}

// Verify checks the submitted code against the cached one and marks the
// user verified on a match. The code is single use; it is removed on
// success.
func (s *otpService) Verify(ctx context.Context, code string, actor *models.Actor) error {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return utils.NewNotFound("User not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsVerified {
		return utils.NewBadRequest("User is already verified")
	}

	key := OTPCacheKey(user.Phone)

	var stored string
	if err := s.cache.Get(ctx, key, &stored); err != nil {
		return utils.NewBadRequest("Verification code expired or not found")
	}
	if stored != code {
		return utils.NewBadRequest("Invalid verification code")
	}

	if err := s.users.SetVerified(ctx, user.ID, true); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WithUserID(user.ID).WithError(err).Warn("otp cleanup failed")
	}

	s.logger.WithUserID(user.ID).Info("user verified")

	return nil
}

func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
