package services

import (
	"context"
	"errors"
	"fmt"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"
	"ridehub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetMe(ctx context.Context, actor *models.Actor) (*models.User, error)
	GetAllUsers(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.User, *utils.PaginationMeta, error)
	SetBlocked(ctx context.Context, userID primitive.ObjectID, blocked models.BlockedStatus, actor *models.Actor) (*models.User, error)
	Stats(ctx context.Context, actor *models.Actor) (*PlatformStats, error)
}

// PlatformStats is the admin dashboard aggregate.
type PlatformStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalDrivers    int64 `json:"total_drivers"`
	PendingDrivers  int64 `json:"pending_drivers"`
	ApprovedDrivers int64 `json:"approved_drivers"`
	TotalRides      int64 `json:"total_rides"`
	ActiveRides     int64 `json:"active_rides"`
	CompletedRides  int64 `json:"completed_rides"`
	CancelledRides  int64 `json:"cancelled_rides"`
}

type userService struct {
	users   interfaces.UserRepository
	drivers interfaces.DriverRepository
	rides   interfaces.RideRepository
	logger  *logger.Logger
}

func NewUserService(
	users interfaces.UserRepository,
	drivers interfaces.DriverRepository,
	rides interfaces.RideRepository,
	logger *logger.Logger,
) UserService {
	return &userService{
		users:   users,
		drivers: drivers,
		rides:   rides,
		logger:  logger,
	}
}

func (s *userService) GetMe(ctx context.Context, actor *models.Actor) (*models.User, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.User, *utils.PaginationMeta, error) {
	if err := Authorize(actor, ActionUserList); err != nil {
		return nil, nil, err
	}

	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}

	return users, utils.CreatePaginationMeta(params, total), nil
}

// SetBlocked flips a user's moderation flag. Admins cannot block other
// admins; only a super admin may.
func (s *userService) SetBlocked(ctx context.Context, userID primitive.ObjectID, blocked models.BlockedStatus, actor *models.Actor) (*models.User, error) {
	if err := Authorize(actor, ActionUserModerate); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if userID == actor.UserID {
		return nil, utils.NewBadRequest("You cannot block yourself")
	}
	if (user.Role == models.RoleAdmin || user.Role == models.RoleSuperAdmin) && actor.Role != models.RoleSuperAdmin {
		return nil, utils.NewForbidden("Only a super admin can moderate admin accounts")
	}

	if user.IsBlocked == blocked {
		return nil, utils.NewBadRequest(fmt.Sprintf("User is already %s", blocked))
	}

	if err := s.users.Update(ctx, userID, map[string]interface{}{"is_blocked": blocked}); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.IsBlocked = blocked

	s.logger.WithUserID(userID).WithFields(map[string]interface{}{
		"is_blocked": blocked,
		"admin_id":   actor.UserID.Hex(),
	}).Info("user moderation updated")

	return user, nil
}

func (s *userService) Stats(ctx context.Context, actor *models.Actor) (*PlatformStats, error) {
	if err := Authorize(actor, ActionStatsView); err != nil {
		return nil, err
	}

	stats := &PlatformStats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalDrivers, err = s.drivers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}
	if stats.PendingDrivers, err = s.drivers.CountByStatus(ctx, models.DriverStatusPending); err != nil {
		return nil, fmt.Errorf("count pending drivers: %w", err)
	}
	if stats.ApprovedDrivers, err = s.drivers.CountByStatus(ctx, models.DriverStatusApproved); err != nil {
		return nil, fmt.Errorf("count approved drivers: %w", err)
	}
	if stats.TotalRides, err = s.rides.Count(ctx); err != nil {
		return nil, fmt.Errorf("count rides: %w", err)
	}
	if stats.ActiveRides, err = s.rides.CountByStatus(ctx,
		models.RideStatusRequested,
		models.RideStatusAccepted,
		models.RideStatusPickedUp,
		models.RideStatusInTransit,
	); err != nil {
		return nil, fmt.Errorf("count active rides: %w", err)
	}
	if stats.CompletedRides, err = s.rides.CountByStatus(ctx, models.RideStatusCompleted); err != nil {
		return nil, fmt.Errorf("count completed rides: %w", err)
	}
	if stats.CancelledRides, err = s.rides.CountByStatus(ctx, models.RideStatusCancelled); err != nil {
		return nil, fmt.Errorf("count cancelled rides: %w", err)
	}

	return stats, nil
}
