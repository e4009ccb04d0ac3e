package mongodb

import (
	"context"
	"fmt"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/services"
	"ridehub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type driverRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
	cache      services.CacheService
}

func NewDriverRepository(db *mongo.Database, cache services.CacheService) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("drivers"),
		users:      db.Collection("users"),
		cache:      cache,
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	if driver.Status == "" {
		driver.Status = models.DriverStatusPending
	}

	_, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicate
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}

	r.cacheDriver(ctx, driver)

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	if driver := r.getDriverFromCache(ctx, services.DriverCacheKey(id.Hex())); driver != nil {
		return driver, nil
	}

	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	r.cacheDriver(ctx, &driver)

	return &driver, nil
}

func (r *driverRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Driver, error) {
	if driver := r.getDriverFromCache(ctx, services.DriverByUserCacheKey(userID.Hex())); driver != nil {
		return driver, nil
	}

	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "is_deleted": false}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver by user: %w", err)
	}

	r.cacheDriver(ctx, &driver)

	return &driver, nil
}

func (r *driverRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateDriverCache(ctx, id)

	return nil
}

// UpdateStatus applies moderation updates and, when promote is set, the
// owning user's role change inside one session so a partial write cannot
// leave an approved driver with an unpromoted user or vice versa.
func (r *driverRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}, promote bool) (*models.Driver, error) {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		updates["updated_at"] = time.Now()

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var driver models.Driver
		err := r.collection.FindOneAndUpdate(
			sessCtx,
			bson.M{"_id": id},
			bson.M{"$set": updates},
			opts,
		).Decode(&driver)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, interfaces.ErrNotFound
			}
			return nil, fmt.Errorf("failed to update driver status: %w", err)
		}

		if promote {
			_, err = r.users.UpdateOne(
				sessCtx,
				bson.M{"_id": driver.UserID},
				bson.M{"$set": bson.M{"role": models.RoleDriver, "updated_at": time.Now()}},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to promote user role: %w", err)
			}
		}

		return &driver, nil
	})
	if err != nil {
		return nil, err
	}

	driver := result.(*models.Driver)
	r.invalidateDriverCache(ctx, driver.ID)

	return driver, nil
}

func (r *driverRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	return r.Update(ctx, id, map[string]interface{}{"rating": rating})
}

func (r *driverRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Driver, int64, error) {
	filter := params.GetSearchFilter([]string{"name", "email"})
	filter["is_deleted"] = false

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, 0, fmt.Errorf("failed to decode drivers: %w", err)
	}

	return drivers, total, nil
}

func (r *driverRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_deleted": false})
}

func (r *driverRepository) CountByStatus(ctx context.Context, status models.DriverStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"driver_status": status, "is_deleted": false})
}

func (r *driverRepository) cacheDriver(ctx context.Context, driver *models.Driver) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, services.DriverCacheKey(driver.ID.Hex()), driver, 30*time.Minute)
	r.cache.Set(ctx, services.DriverByUserCacheKey(driver.UserID.Hex()), driver, 30*time.Minute)
}

func (r *driverRepository) getDriverFromCache(ctx context.Context, key string) *models.Driver {
	if r.cache == nil {
		return nil
	}
	var driver models.Driver
	if err := r.cache.Get(ctx, key, &driver); err != nil {
		return nil
	}
	return &driver
}

func (r *driverRepository) invalidateDriverCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	var driver models.Driver
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver); err == nil {
		r.cache.Delete(ctx, services.DriverCacheKey(id.Hex()), services.DriverByUserCacheKey(driver.UserID.Hex()))
		return
	}
	r.cache.Delete(ctx, services.DriverCacheKey(id.Hex()))
}
