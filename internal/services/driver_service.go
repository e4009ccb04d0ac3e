package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"
	"ridehub/internal/validators"
	"ridehub/pkg/logger"
	"ridehub/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverService interface {
	Apply(ctx context.Context, request *validators.DriverApplication, actor *models.Actor) (*models.Driver, error)
	SetDriverStatus(ctx context.Context, driverID primitive.ObjectID, request *validators.DriverStatusUpdate, actor *models.Actor) (*models.Driver, error)

	GetByID(ctx context.Context, driverID primitive.ObjectID, actor *models.Actor) (*models.Driver, error)
	GetMe(ctx context.Context, actor *models.Actor) (*models.Driver, error)
	UpdateProfile(ctx context.Context, request *validators.DriverProfileUpdate, actor *models.Actor) (*models.Driver, error)

	GetAll(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Driver, *utils.PaginationMeta, error)
}

type driverService struct {
	drivers interfaces.DriverRepository
	users   interfaces.UserRepository
	sms     sms.Provider
	logger  *logger.Logger
}

func NewDriverService(
	drivers interfaces.DriverRepository,
	users interfaces.UserRepository,
	smsProvider sms.Provider,
	logger *logger.Logger,
) DriverService {
	return &driverService{
		drivers: drivers,
		users:   users,
		sms:     smsProvider,
		logger:  logger,
	}
}

// Apply files a driver application for the acting rider. The profile starts
// PENDING; the user keeps the RIDER role until an admin approves.
func (s *driverService) Apply(ctx context.Context, request *validators.DriverApplication, actor *models.Actor) (*models.Driver, error) {
	if err := Authorize(actor, ActionDriverApply); err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		return nil, utils.NewBadRequest("Invalid user id")
	}
	if userID != actor.UserID {
		return nil, utils.NewForbidden("User id does not match the authenticated user")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsVerified {
		return nil, utils.NewForbidden("You are not verified. Verify your account first.")
	}
	if user.IsBlocked == models.Blocked {
		return nil, utils.NewBadRequest("You are blocked. Contact admin.")
	}

	existing, err := s.drivers.GetByUserID(ctx, userID)
	if err == nil {
		switch existing.Status {
		case models.DriverStatusApproved:
			return nil, utils.NewBadRequest("You are already a driver")
		case models.DriverStatusSuspended:
			return nil, utils.NewBadRequest("Your driver account is suspended")
		default:
			return nil, utils.NewBadRequest("You already have a pending driver application")
		}
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("check existing application: %w", err)
	}

	name := request.Name
	if name == "" {
		name = user.Name
	}
	email := request.Email
	if email == "" {
		email = user.Email
	}

	driver := &models.Driver{
		UserID:        userID,
		Name:          name,
		Email:         email,
		NIDNumber:     request.NIDNumber,
		LicenseNumber: request.LicenseNumber,
		Vehicle:       request.Vehicle,
		Status:        models.DriverStatusPending,
		IsAvailable:   false,
	}

	if err := s.drivers.Create(ctx, driver); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflict("A driver application already exists for this user")
		}
		return nil, fmt.Errorf("create driver: %w", err)
	}

	s.logger.WithDriverID(driver.ID).WithUserID(userID).Info("driver application submitted")

	return driver, nil
}

// SetDriverStatus moderates a driver application. Approval promotes the
// owning user to the DRIVER role in the same transaction as the status
// write; suspension leaves the role alone but takes the driver off the
// road.
func (s *driverService) SetDriverStatus(ctx context.Context, driverID primitive.ObjectID, request *validators.DriverStatusUpdate, actor *models.Actor) (*models.Driver, error) {
	if err := Authorize(actor, ActionDriverModerate); err != nil {
		return nil, err
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver not found")
		}
		return nil, fmt.Errorf("lookup driver: %w", err)
	}

	if driver.Status == request.Status {
		return nil, utils.NewBadRequest(fmt.Sprintf("Driver is already %s", request.Status))
	}

	updates := map[string]interface{}{
		"driver_status": request.Status,
	}
	if request.IsAvailable != nil {
		updates["is_available"] = *request.IsAvailable
	}

	promote := false
	switch request.Status {
	case models.DriverStatusApproved:
		promote = true
		updates["approved_at"] = time.Now()
	case models.DriverStatusSuspended:
		updates["is_available"] = false
	}

	updated, err := s.drivers.UpdateStatus(ctx, driverID, updates, promote)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver not found")
		}
		return nil, fmt.Errorf("update driver status: %w", err)
	}

	s.logger.WithDriverID(driverID).WithFields(map[string]interface{}{
		"status":   updated.Status,
		"admin_id": actor.UserID.Hex(),
	}).Info("driver status updated")

	s.notifyStatusChange(updated)

	return updated, nil
}

// notifyStatusChange sends the moderation outcome to the driver's phone.
// Delivery is fire-and-forget; failures are logged only.
func (s *driverService) notifyStatusChange(driver *models.Driver) {
	if s.sms == nil {
		return
	}

	user, err := s.users.GetByID(context.Background(), driver.UserID)
	if err != nil || user.Phone == "" {
		return
	}

	var message string
	switch driver.Status {
	case models.DriverStatusApproved:
		message = fmt.Sprintf("Congratulations %s, your %s driver application has been approved.", driver.Name, utils.AppName)
	case models.DriverStatusSuspended:
		message = fmt.Sprintf("Your %s driver account has been suspended. Contact support for details.", utils.AppName)
	default:
		message = fmt.Sprintf("Your %s driver application is under review.", utils.AppName)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.sms.SendSMS(ctx, &sms.Request{
			To:      user.Phone,
			Message: message,
			Type:    "transactional",
		}); err != nil {
			s.logger.WithDriverID(driver.ID).WithError(err).Warn("driver status sms failed")
		}
	}()
}

func (s *driverService) GetByID(ctx context.Context, driverID primitive.ObjectID, actor *models.Actor) (*models.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver not found")
		}
		return nil, fmt.Errorf("lookup driver: %w", err)
	}

	if !actor.IsAdmin() && driver.UserID != actor.UserID {
		return nil, utils.NewForbidden("You are not permitted to view this driver")
	}

	return driver, nil
}

func (s *driverService) GetMe(ctx context.Context, actor *models.Actor) (*models.Driver, error) {
	driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver profile not found")
		}
		return nil, fmt.Errorf("lookup driver: %w", err)
	}
	return driver, nil
}

// UpdateProfile lets a driver maintain their own profile. Moderation fields
// are rejected here; only admins change driver_status, via SetDriverStatus.
func (s *driverService) UpdateProfile(ctx context.Context, request *validators.DriverProfileUpdate, actor *models.Actor) (*models.Driver, error) {
	driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver profile not found")
		}
		return nil, fmt.Errorf("lookup driver: %w", err)
	}

	if request.Status != "" && !actor.IsAdmin() {
		return nil, utils.NewForbidden("You cannot change your own driver status")
	}

	updates := map[string]interface{}{}
	if request.Name != "" {
		updates["name"] = request.Name
	}
	if request.Vehicle != nil {
		updates["vehicle_info"] = *request.Vehicle
	}
	if request.IsAvailable != nil {
		if driver.Status != models.DriverStatusApproved && *request.IsAvailable {
			return nil, utils.NewBadRequest("Only approved drivers can go online")
		}
		updates["is_available"] = *request.IsAvailable
	}
	if request.CurrentLocation != nil {
		updates["current_location"] = *request.CurrentLocation
	}

	if len(updates) == 0 {
		return driver, nil
	}

	if err := s.drivers.Update(ctx, driver.ID, updates); err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}

	updated, err := s.drivers.GetByID(ctx, driver.ID)
	if err != nil {
		return nil, fmt.Errorf("reload driver: %w", err)
	}

	return updated, nil
}

func (s *driverService) GetAll(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Driver, *utils.PaginationMeta, error) {
	if err := Authorize(actor, ActionDriverList); err != nil {
		return nil, nil, err
	}

	drivers, total, err := s.drivers.List(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list drivers: %w", err)
	}

	return drivers, utils.CreatePaginationMeta(params, total), nil
}
