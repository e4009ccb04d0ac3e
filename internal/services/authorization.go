package services

import (
	"ridehub/internal/models"
	"ridehub/internal/utils"
)

// Action names an operation subject to role policy. Ownership checks
// (rider owns ride, driver bound to ride) remain with the services; this
// table answers only "may this role perform this action at all".
type Action string

const (
	ActionRideRequest      Action = "ride:request"
	ActionRideDiscover     Action = "ride:discover"
	ActionRideAccept       Action = "ride:accept"
	ActionRideStatusUpdate Action = "ride:status_update"
	ActionRideCancel       Action = "ride:cancel"
	ActionRideFeedback     Action = "ride:feedback"
	ActionRideListAll      Action = "ride:list_all"
	ActionDriverApply      Action = "driver:apply"
	ActionDriverModerate   Action = "driver:moderate"
	ActionDriverList       Action = "driver:list"
	ActionUserList         Action = "user:list"
	ActionUserModerate     Action = "user:moderate"
	ActionStatsView        Action = "stats:view"
)

var rolePolicy = map[Action][]models.Role{
	ActionRideRequest:      {models.RoleRider},
	ActionRideDiscover:     {models.RoleDriver},
	ActionRideAccept:       {models.RoleDriver},
	ActionRideStatusUpdate: {models.RoleDriver, models.RoleAdmin, models.RoleSuperAdmin},
	ActionRideCancel:       {models.RoleRider, models.RoleDriver, models.RoleAdmin, models.RoleSuperAdmin},
	ActionRideFeedback:     {models.RoleRider},
	ActionRideListAll:      {models.RoleDriver, models.RoleAdmin, models.RoleSuperAdmin},
	ActionDriverApply:      {models.RoleRider},
	ActionDriverModerate:   {models.RoleAdmin, models.RoleSuperAdmin},
	ActionDriverList:       {models.RoleAdmin, models.RoleSuperAdmin},
	ActionUserList:         {models.RoleAdmin, models.RoleSuperAdmin},
	ActionUserModerate:     {models.RoleAdmin, models.RoleSuperAdmin},
	ActionStatsView:        {models.RoleAdmin, models.RoleSuperAdmin},
}

// Authorize returns a FORBIDDEN AppError unless the actor's role is allowed
// to perform the action.
func Authorize(actor *models.Actor, action Action) error {
	if actor == nil {
		return utils.NewForbidden("No authenticated actor")
	}
	for _, role := range rolePolicy[action] {
		if role == actor.Role {
			return nil
		}
	}
	return utils.NewForbidden("You are not permitted to perform this action")
}
