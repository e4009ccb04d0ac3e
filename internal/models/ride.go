package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusPickedUp  RideStatus = "PICKED_UP"
	RideStatusInTransit RideStatus = "IN_TRANSIT"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// rideTransitions is the full transition table. A status not present, or a
// target not listed, is an invalid transition.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusRequested: {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:  {RideStatusPickedUp, RideStatusCancelled},
	RideStatusPickedUp:  {RideStatusInTransit, RideStatusCancelled},
	RideStatusInTransit: {RideStatusCompleted, RideStatusCancelled},
}

// CanTransition reports whether a ride may move from one status to another.
// COMPLETED and CANCELLED are terminal.
func CanTransition(from, to RideStatus) bool {
	for _, next := range rideTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

func (s RideStatus) IsValid() bool {
	switch s {
	case RideStatusRequested, RideStatusAccepted, RideStatusPickedUp,
		RideStatusInTransit, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// RiderActiveStatuses are the statuses that count against the
// one-active-ride-per-rider limit.
func RiderActiveStatuses() []RideStatus {
	return []RideStatus{RideStatusRequested, RideStatusAccepted, RideStatusInTransit}
}

// DriverActiveStatuses are the statuses that count against the
// one-active-ride-per-driver limit.
func DriverActiveStatuses() []RideStatus {
	return []RideStatus{RideStatusAccepted, RideStatusPickedUp, RideStatusInTransit}
}

// RideTimestamps records when each lifecycle transition happened.
// RequestedAt is always set; the rest are stamped by their transition.
type RideTimestamps struct {
	RequestedAt time.Time  `json:"requested_at" bson:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	InTransitAt *time.Time `json:"in_transit_at,omitempty" bson:"in_transit_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

type Ride struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RiderID      primitive.ObjectID  `json:"rider_id" bson:"rider_id" validate:"required"`
	DriverID     *primitive.ObjectID `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	CancelledBy  *primitive.ObjectID `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	Pickup       Location            `json:"pickup_location" bson:"pickup_location" validate:"required"`
	Destination  Location            `json:"destination" bson:"destination" validate:"required"`
	Status       RideStatus          `json:"status" bson:"status" default:"REQUESTED"`
	Fare         *float64            `json:"fare,omitempty" bson:"fare,omitempty"`
	Distance     *float64            `json:"distance,omitempty" bson:"distance,omitempty"`
	Timestamps   RideTimestamps      `json:"timestamps_log" bson:"timestamps_log"`
	Feedback     string              `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Rating       *float64            `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// RiderContact is the projection of the requesting user attached to rides
// handed to drivers and admins.
type RiderContact struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Phone string             `json:"phone"`
	Email string             `json:"email"`
}

// RideDetail is a ride enriched with its rider and driver projections.
type RideDetail struct {
	Ride   *Ride         `json:"ride"`
	Rider  *RiderContact `json:"rider,omitempty"`
	Driver *Driver       `json:"driver,omitempty"`
}
