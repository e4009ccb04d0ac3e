package interfaces

import (
	"context"

	"ridehub/internal/models"
	"ridehub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the identity directory contract. The ride and driver
// services consume it read-mostly: lookups plus role/verification/moderation
// flag updates. Passwords and auth providers are never written here.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.Role) error
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}
