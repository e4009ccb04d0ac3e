package interfaces

import (
	"context"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	// FindActiveByRider returns the rider's ride in
	// {REQUESTED, ACCEPTED, IN_TRANSIT}, or ErrNotFound.
	FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) (*models.Ride, error)

	// FindActiveByDriver returns the driver's ride in
	// {ACCEPTED, PICKED_UP, IN_TRANSIT}, or ErrNotFound.
	FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error)

	// AcceptByDriver binds the driver and moves the ride to ACCEPTED in one
	// conditional write: it matches only while the ride is still REQUESTED
	// with no driver bound. A lost race returns ErrPreconditionFailed and
	// leaves the ride untouched.
	AcceptByDriver(ctx context.Context, rideID, driverID primitive.ObjectID, at time.Time) (*models.Ride, error)

	// TransitionStatus moves the ride from the expected prior status to the
	// target status, stamping the matching timestamp field and applying any
	// extra updates (cancelled_by, cancel_reason). The write is conditional
	// on the prior status; a mismatch returns ErrPreconditionFailed.
	TransitionStatus(ctx context.Context, rideID primitive.ObjectID, from, to models.RideStatus, extra map[string]interface{}) (*models.Ride, error)

	// SetFeedback records feedback (and rating, if present) on a COMPLETED
	// ride that has none yet; the write is conditional on both.
	SetFeedback(ctx context.Context, rideID primitive.ObjectID, feedback string, rating *float64) (*models.Ride, error)

	// FindRatedByDriver returns every ride of the driver carrying a rating.
	FindRatedByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Ride, error)

	ListAvailable(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	ListByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	ListAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, statuses ...models.RideStatus) (int64, error)
}
