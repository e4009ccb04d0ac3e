package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string
type ActiveStatus string
type BlockedStatus string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleRider      Role = "RIDER"
	RoleDriver     Role = "DRIVER"

	ActiveStatusActive   ActiveStatus = "ACTIVE"
	ActiveStatusInactive ActiveStatus = "INACTIVE"
	ActiveStatusBlocked  ActiveStatus = "BLOCKED"

	Blocked   BlockedStatus = "BLOCKED"
	Unblocked BlockedStatus = "UNBLOCKED"
)

type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Email      string             `json:"email" bson:"email" validate:"required,email"`
	Password   string             `json:"-" bson:"password"`
	Phone      string             `json:"phone" bson:"phone"`
	Picture    string             `json:"picture" bson:"picture"`
	Address    string             `json:"address" bson:"address"`
	Role       Role               `json:"role" bson:"role" default:"RIDER"`
	IsActive   ActiveStatus       `json:"is_active" bson:"is_active" default:"ACTIVE"`
	IsBlocked  BlockedStatus      `json:"is_blocked" bson:"is_blocked" default:"UNBLOCKED"`
	IsVerified bool               `json:"is_verified" bson:"is_verified" default:"false"`
	IsDeleted  bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Actor is the decoded identity performing a request. It is established by
// the authentication middleware and trusted by the services; the services
// only layer authorization decisions on top of it.
type Actor struct {
	UserID primitive.ObjectID `json:"user_id"`
	Role   Role               `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// CanOriginateRides reports whether the user is in a state that allows
// creating new ride requests.
func (u *User) CanOriginateRides() bool {
	return !u.IsDeleted && u.IsActive == ActiveStatusActive && u.IsBlocked != Blocked
}
