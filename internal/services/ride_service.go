package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"
	"ridehub/internal/validators"
	"ridehub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideService interface {
	// Rider operations
	RequestRide(ctx context.Context, request *validators.RideRequest, actor *models.Actor) (*models.Ride, error)
	SubmitFeedback(ctx context.Context, rideID primitive.ObjectID, request *validators.FeedbackRequest, actor *models.Actor) (*FeedbackResult, error)
	GetRidesForRider(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Ride, *utils.PaginationMeta, error)

	// Driver operations
	GetAvailableRides(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.RideDetail, *utils.PaginationMeta, error)
	AcceptRide(ctx context.Context, rideID primitive.ObjectID, actor *models.Actor) (*models.RideDetail, error)

	// Shared lifecycle operations
	UpdateRideStatus(ctx context.Context, rideID primitive.ObjectID, request *validators.RideStatusUpdateRequest, actor *models.Actor) (*models.RideDetail, error)
	CancelRide(ctx context.Context, rideID primitive.ObjectID, reason string, actor *models.Actor) (*models.RideDetail, error)

	// Queries
	GetRide(ctx context.Context, rideID primitive.ObjectID, actor *models.Actor) (*models.RideDetail, error)
	GetAllRides(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Ride, *utils.PaginationMeta, error)
}

// FeedbackResult is the outcome of a feedback submission: identifiers plus
// the driver's recomputed average, when a rating was included.
type FeedbackResult struct {
	RideID        primitive.ObjectID `json:"ride_id"`
	DriverID      primitive.ObjectID `json:"driver_id"`
	AverageRating *float64           `json:"average_rating,omitempty"`
}

type rideService struct {
	rides   interfaces.RideRepository
	drivers interfaces.DriverRepository
	users   interfaces.UserRepository
	logger  *logger.Logger
}

func NewRideService(
	rides interfaces.RideRepository,
	drivers interfaces.DriverRepository,
	users interfaces.UserRepository,
	logger *logger.Logger,
) RideService {
	return &rideService{
		rides:   rides,
		drivers: drivers,
		users:   users,
		logger:  logger,
	}
}

func (s *rideService) RequestRide(ctx context.Context, request *validators.RideRequest, actor *models.Actor) (*models.Ride, error) {
	if err := Authorize(actor, ActionRideRequest); err != nil {
		return nil, err
	}

	if request.RiderID == "" {
		return nil, utils.NewBadRequest("Rider id not found")
	}
	riderID, err := primitive.ObjectIDFromHex(request.RiderID)
	if err != nil {
		return nil, utils.NewBadRequest("Invalid rider id")
	}

	rider, err := s.users.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Rider not found")
		}
		return nil, fmt.Errorf("lookup rider: %w", err)
	}

	if rider.IsDeleted || rider.IsActive != models.ActiveStatusActive {
		return nil, utils.NewForbidden("Rider is not active")
	}
	if rider.IsBlocked == models.Blocked {
		return nil, utils.NewBadRequest("You are blocked. Contact admin.")
	}
	if actor.UserID != riderID {
		return nil, utils.NewForbidden("Rider id does not match the authenticated user")
	}

	if !request.Pickup.HasCoordinates() || !request.Destination.HasCoordinates() {
		return nil, utils.NewBadRequest("Invalid pickup or destination coordinates")
	}
	if request.Pickup.SamePointAs(request.Destination) {
		return nil, utils.NewBadRequest("Pickup and destination cannot be the same")
	}

	_, err = s.rides.FindActiveByRider(ctx, riderID)
	if err == nil {
		return nil, utils.NewConflict("You already have an ongoing ride request")
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("check ongoing ride: %w", err)
	}

	ride := &models.Ride{
		RiderID:     riderID,
		Pickup:      request.Pickup,
		Destination: request.Destination,
		Status:      models.RideStatusRequested,
		Timestamps:  models.RideTimestamps{RequestedAt: time.Now()},
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		// The unique active-ride index closes the window between the read
		// above and this insert.
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflict("You already have an ongoing ride request")
		}
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.logger.WithRideID(ride.ID).WithUserID(riderID).Info("ride requested")

	return ride, nil
}

func (s *rideService) GetAvailableRides(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.RideDetail, *utils.PaginationMeta, error) {
	if err := Authorize(actor, ActionRideDiscover); err != nil {
		return nil, nil, err
	}

	if _, err := s.approvedDriver(ctx, actor); err != nil {
		return nil, nil, err
	}

	rides, total, err := s.rides.ListAvailable(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list available rides: %w", err)
	}

	details := make([]*models.RideDetail, 0, len(rides))
	for _, ride := range rides {
		details = append(details, &models.RideDetail{
			Ride:  ride,
			Rider: s.riderContact(ctx, ride.RiderID),
		})
	}

	return details, utils.CreatePaginationMeta(params, total), nil
}

// AcceptRide claims a REQUESTED, unbound ride for the acting driver. The
// driver-side capacity check runs before the ride lookup so a driver already
// mid-trip is rejected without touching the target ride; the conditional
// write then re-validates the ride at commit time, so concurrent accepts
// resolve to exactly one winner.
func (s *rideService) AcceptRide(ctx context.Context, rideID primitive.ObjectID, actor *models.Actor) (*models.RideDetail, error) {
	if err := Authorize(actor, ActionRideAccept); err != nil {
		return nil, err
	}

	driver, err := s.approvedDriver(ctx, actor)
	if err != nil {
		return nil, err
	}

	_, err = s.rides.FindActiveByDriver(ctx, driver.ID)
	if err == nil {
		return nil, utils.NewConflict("You already have an active ride")
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("check active ride: %w", err)
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Ride not found")
		}
		return nil, fmt.Errorf("lookup ride: %w", err)
	}

	if ride.Status != models.RideStatusRequested {
		return nil, utils.NewBadRequest("Ride is not available")
	}
	if ride.DriverID != nil {
		return nil, utils.NewConflict("Ride already accepted by another driver")
	}

	accepted, err := s.rides.AcceptByDriver(ctx, rideID, driver.ID, time.Now())
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, utils.NewConflict("Ride already accepted by another driver")
		}
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflict("You already have an active ride")
		}
		return nil, fmt.Errorf("accept ride: %w", err)
	}

	s.logger.WithRideID(rideID).WithDriverID(driver.ID).Info("ride accepted")

	return s.detail(ctx, accepted), nil
}

func (s *rideService) UpdateRideStatus(ctx context.Context, rideID primitive.ObjectID, request *validators.RideStatusUpdateRequest, actor *models.Actor) (*models.RideDetail, error) {
	if err := Authorize(actor, ActionRideStatusUpdate); err != nil {
		return nil, err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Ride not found")
		}
		return nil, fmt.Errorf("lookup ride: %w", err)
	}

	// Moving an unbound ride to ACCEPTED is a claim, not a plain status
	// push; route drivers through the acceptance protocol so the driver
	// binding stays atomic. Admins cannot accept on a driver's behalf.
	if request.Status == models.RideStatusAccepted && ride.DriverID == nil {
		if actor.Role != models.RoleDriver {
			return nil, utils.NewBadRequest("No driver assigned to this ride yet")
		}
		return s.AcceptRide(ctx, rideID, actor)
	}

	if actor.Role == models.RoleDriver {
		driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, utils.NewNotFound("Driver profile not found")
			}
			return nil, fmt.Errorf("lookup driver: %w", err)
		}
		if ride.DriverID == nil || *ride.DriverID != driver.ID {
			return nil, utils.NewForbidden("You are not assigned to this ride")
		}
	}

	if !models.CanTransition(ride.Status, request.Status) {
		return nil, utils.NewBadRequest(fmt.Sprintf("Cannot change ride status from %s to %s", ride.Status, request.Status))
	}

	extra := map[string]interface{}{}
	if request.Status == models.RideStatusCancelled {
		extra["cancelled_by"] = actor.UserID
		if request.CancelReason != "" {
			extra["cancel_reason"] = request.CancelReason
		}
	}

	updated, err := s.rides.TransitionStatus(ctx, rideID, ride.Status, request.Status, extra)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, utils.NewConflict("Ride status changed concurrently, please retry")
		}
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflict("Another active ride blocks this transition")
		}
		return nil, fmt.Errorf("transition ride status: %w", err)
	}

	s.logger.WithRideID(rideID).WithFields(map[string]interface{}{
		"from": ride.Status,
		"to":   updated.Status,
	}).Info("ride status updated")

	return s.detail(ctx, updated), nil
}

func (s *rideService) CancelRide(ctx context.Context, rideID primitive.ObjectID, reason string, actor *models.Actor) (*models.RideDetail, error) {
	if err := Authorize(actor, ActionRideCancel); err != nil {
		return nil, err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Ride not found")
		}
		return nil, fmt.Errorf("lookup ride: %w", err)
	}

	if ride.Status.IsTerminal() {
		return nil, utils.NewBadRequest("Ride is already completed or cancelled")
	}

	switch actor.Role {
	case models.RoleRider:
		if ride.RiderID != actor.UserID {
			return nil, utils.NewForbidden("This ride is not yours")
		}
		if ride.Status == models.RideStatusPickedUp || ride.Status == models.RideStatusInTransit {
			return nil, utils.NewBadRequest("Cannot cancel after pickup")
		}
	case models.RoleDriver:
		driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, utils.NewNotFound("Driver profile not found")
			}
			return nil, fmt.Errorf("lookup driver: %w", err)
		}
		if ride.DriverID == nil || *ride.DriverID != driver.ID {
			return nil, utils.NewForbidden("You are not assigned to this ride")
		}
	}

	extra := map[string]interface{}{
		"cancelled_by": actor.UserID,
	}
	if reason != "" {
		extra["cancel_reason"] = reason
	}

	cancelled, err := s.rides.TransitionStatus(ctx, rideID, ride.Status, models.RideStatusCancelled, extra)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, utils.NewConflict("Ride status changed concurrently, please retry")
		}
		return nil, fmt.Errorf("cancel ride: %w", err)
	}

	s.logger.WithRideID(rideID).WithUserID(actor.UserID).Info("ride cancelled")

	return s.detail(ctx, cancelled), nil
}

func (s *rideService) SubmitFeedback(ctx context.Context, rideID primitive.ObjectID, request *validators.FeedbackRequest, actor *models.Actor) (*FeedbackResult, error) {
	if err := Authorize(actor, ActionRideFeedback); err != nil {
		return nil, err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Ride not found")
		}
		return nil, fmt.Errorf("lookup ride: %w", err)
	}

	if ride.DriverID == nil {
		return nil, utils.NewBadRequest("No driver assigned to this ride")
	}
	if ride.RiderID != actor.UserID {
		return nil, utils.NewBadRequest("You are not authorized to rate this ride")
	}
	if ride.Rating != nil {
		return nil, utils.NewBadRequest("Feedback already submitted")
	}
	if ride.Status != models.RideStatusCompleted {
		return nil, utils.NewBadRequest("Feedback allowed only for completed rides")
	}
	if request.Rating != nil && (*request.Rating < utils.MinRideRating || *request.Rating > utils.MaxRideRating) {
		return nil, utils.NewBadRequest("Rating must be between 1 and 5")
	}

	rider, err := s.users.GetByID(ctx, ride.RiderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewBadRequest("User is not allowed to submit feedback")
		}
		return nil, fmt.Errorf("lookup rider: %w", err)
	}
	if rider.IsBlocked == models.Blocked {
		return nil, utils.NewBadRequest("User is not allowed to submit feedback")
	}

	updated, err := s.rides.SetFeedback(ctx, rideID, request.Feedback, request.Rating)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, utils.NewBadRequest("Feedback already submitted")
		}
		return nil, fmt.Errorf("set feedback: %w", err)
	}

	result := &FeedbackResult{
		RideID:   updated.ID,
		DriverID: *updated.DriverID,
	}

	if request.Rating != nil {
		average, err := s.recomputeDriverRating(ctx, *updated.DriverID)
		if err != nil {
			return nil, err
		}
		result.AverageRating = &average
	}

	s.logger.WithRideID(rideID).WithDriverID(*updated.DriverID).Info("feedback recorded")

	return result, nil
}

// recomputeDriverRating folds the driver's full rated-ride set into a fresh
// average, rounded to one decimal place, and writes it onto the driver row.
// Overlapping recomputations for the same driver are a benign race: the last
// writer's value is still consistent with the rated set it read.
func (s *rideService) recomputeDriverRating(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	ratedRides, err := s.rides.FindRatedByDriver(ctx, driverID)
	if err != nil {
		return 0, fmt.Errorf("load rated rides: %w", err)
	}

	var sum float64
	var count int
	for _, ride := range ratedRides {
		if ride.Rating == nil {
			continue
		}
		sum += *ride.Rating
		count++
	}

	average := 0.0
	if count > 0 {
		average = math.Round(sum/float64(count)*10) / 10
	}

	if err := s.drivers.UpdateRating(ctx, driverID, average); err != nil {
		return 0, fmt.Errorf("update driver rating: %w", err)
	}

	return average, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID primitive.ObjectID, actor *models.Actor) (*models.RideDetail, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Ride information not found")
		}
		return nil, fmt.Errorf("lookup ride: %w", err)
	}

	switch actor.Role {
	case models.RoleRider:
		if ride.RiderID != actor.UserID {
			return nil, utils.NewForbidden("This ride is not yours")
		}
	case models.RoleDriver:
		driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, utils.NewNotFound("Driver profile not found")
			}
			return nil, fmt.Errorf("lookup driver: %w", err)
		}
		if ride.DriverID == nil || *ride.DriverID != driver.ID {
			return nil, utils.NewForbidden("This ride is not yours")
		}
	}

	return s.detail(ctx, ride), nil
}

func (s *rideService) GetRidesForRider(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Ride, *utils.PaginationMeta, error) {
	rides, total, err := s.rides.ListByRider(ctx, actor.UserID, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list rider rides: %w", err)
	}

	return rides, utils.CreatePaginationMeta(params, total), nil
}

func (s *rideService) GetAllRides(ctx context.Context, actor *models.Actor, params *utils.PaginationParams) ([]*models.Ride, *utils.PaginationMeta, error) {
	if err := Authorize(actor, ActionRideListAll); err != nil {
		return nil, nil, err
	}

	if actor.IsAdmin() {
		rides, total, err := s.rides.ListAll(ctx, params)
		if err != nil {
			return nil, nil, fmt.Errorf("list rides: %w", err)
		}
		return rides, utils.CreatePaginationMeta(params, total), nil
	}

	driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, utils.NewNotFound("Driver profile not found")
		}
		return nil, nil, fmt.Errorf("lookup driver: %w", err)
	}

	rides, total, err := s.rides.ListByDriver(ctx, driver.ID, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list driver rides: %w", err)
	}

	return rides, utils.CreatePaginationMeta(params, total), nil
}

// approvedDriver resolves the actor's driver profile and requires it to be
// APPROVED.
func (s *rideService) approvedDriver(ctx context.Context, actor *models.Actor) (*models.Driver, error) {
	driver, err := s.drivers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFound("Driver profile not found")
		}
		return nil, fmt.Errorf("lookup driver: %w", err)
	}
	if driver.Status != models.DriverStatusApproved {
		return nil, utils.NewForbidden("Driver is not approved")
	}
	return driver, nil
}

// detail enriches a ride with its rider and driver projections. Enrichment
// is best effort; a missing projection never fails the operation.
func (s *rideService) detail(ctx context.Context, ride *models.Ride) *models.RideDetail {
	detail := &models.RideDetail{
		Ride:  ride,
		Rider: s.riderContact(ctx, ride.RiderID),
	}

	if ride.DriverID != nil {
		if driver, err := s.drivers.GetByID(ctx, *ride.DriverID); err == nil {
			detail.Driver = driver
		}
	}

	return detail
}

func (s *rideService) riderContact(ctx context.Context, riderID primitive.ObjectID) *models.RiderContact {
	rider, err := s.users.GetByID(ctx, riderID)
	if err != nil {
		return nil
	}
	return &models.RiderContact{
		ID:    rider.ID,
		Name:  rider.Name,
		Phone: rider.Phone,
		Email: rider.Email,
	}
}
