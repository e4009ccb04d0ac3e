package mongodb

import (
	"context"
	"fmt"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rideRepository deliberately does not cache ride documents: the accept and
// transition paths depend on reading current state, and every write here is
// a conditional update against the stored document.
type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Status == "" {
		ride.Status = models.RideStatusRequested
	}
	if ride.Timestamps.RequestedAt.IsZero() {
		ride.Timestamps.RequestedAt = ride.CreatedAt
	}

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicate
		}
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) (*models.Ride, error) {
	return r.findActive(ctx, bson.M{
		"rider_id": riderID,
		"status":   bson.M{"$in": models.RiderActiveStatuses()},
	})
}

func (r *rideRepository) FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	return r.findActive(ctx, bson.M{
		"driver_id": driverID,
		"status":    bson.M{"$in": models.DriverActiveStatuses()},
	})
}

func (r *rideRepository) findActive(ctx context.Context, filter bson.M) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, filter).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active ride: %w", err)
	}

	return &ride, nil
}

// AcceptByDriver is the single-winner write of the acceptance protocol. The
// filter re-validates status and the unbound driver slot at write time, so
// of N racing accepts exactly one matches; the rest see no document.
func (r *rideRepository) AcceptByDriver(ctx context.Context, rideID, driverID primitive.ObjectID, at time.Time) (*models.Ride, error) {
	filter := bson.M{
		"_id":       rideID,
		"status":    models.RideStatusRequested,
		"driver_id": nil,
	}
	update := bson.M{"$set": bson.M{
		"driver_id":                  driverID,
		"status":                     models.RideStatusAccepted,
		"timestamps_log.accepted_at": at,
		"updated_at":                 at,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrPreconditionFailed
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, interfaces.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to accept ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) TransitionStatus(ctx context.Context, rideID primitive.ObjectID, from, to models.RideStatus, extra map[string]interface{}) (*models.Ride, error) {
	now := time.Now()

	set := bson.M{
		"status":     to,
		"updated_at": now,
	}
	if field := timestampField(to); field != "" {
		set[field] = now
	}
	for k, v := range extra {
		set[k] = v
	}

	filter := bson.M{"_id": rideID, "status": from}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrPreconditionFailed
		}
		// A transition into an active status can collide with the unique
		// active-ride indexes when the actor picked up another active ride
		// in the meantime.
		if mongo.IsDuplicateKeyError(err) {
			return nil, interfaces.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to transition ride status: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) SetFeedback(ctx context.Context, rideID primitive.ObjectID, feedback string, rating *float64) (*models.Ride, error) {
	filter := bson.M{
		"_id":    rideID,
		"status": models.RideStatusCompleted,
		"rating": bson.M{"$exists": false},
	}
	set := bson.M{
		"feedback":   feedback,
		"updated_at": time.Now(),
	}
	if rating != nil {
		set["rating"] = *rating
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrPreconditionFailed
		}
		return nil, fmt.Errorf("failed to set feedback: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) FindRatedByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Ride, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"driver_id": driverID,
		"rating":    bson.M{"$exists": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find rated rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rated rides: %w", err)
	}

	return rides, nil
}

func (r *rideRepository) ListAvailable(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{
		"status":    models.RideStatusRequested,
		"driver_id": nil,
	}, params)
}

func (r *rideRepository) ListByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{"rider_id": riderID}, params)
}

func (r *rideRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{"driver_id": driverID}, params)
}

func (r *rideRepository) ListAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{}, params)
}

func (r *rideRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, 0, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, total, nil
}

func (r *rideRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *rideRepository) CountByStatus(ctx context.Context, statuses ...models.RideStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

func timestampField(status models.RideStatus) string {
	switch status {
	case models.RideStatusAccepted:
		return "timestamps_log.accepted_at"
	case models.RideStatusPickedUp:
		return "timestamps_log.picked_up_at"
	case models.RideStatusInTransit:
		return "timestamps_log.in_transit_at"
	case models.RideStatusCompleted:
		return "timestamps_log.completed_at"
	case models.RideStatusCancelled:
		return "timestamps_log.cancelled_at"
	}
	return ""
}
