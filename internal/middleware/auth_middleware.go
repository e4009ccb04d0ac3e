package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridehub/internal/models"
	"ridehub/internal/utils"
)

const actorContextKey = "actor"

// AuthRequired validates the bearer token and places the decoded Actor on
// the request context. Services downstream trust this identity.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(actorContextKey, &models.Actor{
			UserID: userID,
			Role:   models.Role(claims.Role),
		})

		c.Next()
	}
}

// RoleRequired rejects requests whose actor role is not in the allow list.
// Route-level coarse gate; the services still run their own policy checks.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, 403, "FORBIDDEN", "You are not permitted to perform this action")
		c.Abort()
	}
}

// GetActor returns the authenticated actor, or nil when the route skipped
// AuthRequired.
func GetActor(c *gin.Context) *models.Actor {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*models.Actor)
	if !ok {
		return nil
	}
	return actor
}
