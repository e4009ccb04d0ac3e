package interfaces

import (
	"context"

	"ridehub/internal/models"
	"ridehub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Driver, error)

	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// UpdateStatus applies moderation updates to the driver document and,
	// when promote is set, updates the owning user's role to DRIVER in the
	// same transaction. Both writes commit or roll back together.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}, promote bool) (*models.Driver, error)

	UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Driver, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.DriverStatus) (int64, error)
}
