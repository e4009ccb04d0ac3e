package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"ridehub/internal/models"
	"ridehub/internal/repositories/interfaces"
	"ridehub/internal/utils"
	"ridehub/pkg/logger"
	"ridehub/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The fakes below mirror the conditional-write semantics of the mongodb
// repositories: a mutex plays the role of the document-level atomicity, so
// concurrent accepts against one fake resolve to a single winner exactly as
// they do against the real store.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) put(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id primitive.ObjectID, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id primitive.ObjectID, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.IsVerified = verified
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if blocked, ok := updates["is_blocked"].(models.BlockedStatus); ok {
		user.IsBlocked = blocked
	}
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, int64(len(users)), nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.Driver
	users   *fakeUserRepo
}

func newFakeDriverRepo(users *fakeUserRepo) *fakeDriverRepo {
	return &fakeDriverRepo{
		drivers: make(map[primitive.ObjectID]*models.Driver),
		users:   users,
	}
}

func (f *fakeDriverRepo) put(driver *models.Driver) *models.Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	f.drivers[driver.ID] = driver
	return driver
}

func (f *fakeDriverRepo) Create(_ context.Context, driver *models.Driver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.drivers {
		if existing.UserID == driver.UserID {
			return interfaces.ErrDuplicate
		}
	}
	driver.ID = primitive.NewObjectID()
	if driver.Status == "" {
		driver.Status = models.DriverStatusPending
	}
	f.drivers[driver.ID] = driver
	return nil
}

func (f *fakeDriverRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *driver
	return &clone, nil
}

func (f *fakeDriverRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, driver := range f.drivers {
		if driver.UserID == userID {
			clone := *driver
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeDriverRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	applyDriverUpdates(driver, updates)
	return nil
}

func (f *fakeDriverRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, updates map[string]interface{}, promote bool) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	applyDriverUpdates(driver, updates)
	if promote {
		f.users.mu.Lock()
		if user, ok := f.users.users[driver.UserID]; ok {
			user.Role = models.RoleDriver
		}
		f.users.mu.Unlock()
	}
	clone := *driver
	return &clone, nil
}

func applyDriverUpdates(driver *models.Driver, updates map[string]interface{}) {
	if status, ok := updates["driver_status"].(models.DriverStatus); ok {
		driver.Status = status
	}
	if available, ok := updates["is_available"].(bool); ok {
		driver.IsAvailable = available
	}
	if approvedAt, ok := updates["approved_at"].(time.Time); ok {
		driver.ApprovedAt = &approvedAt
	}
	if name, ok := updates["name"].(string); ok {
		driver.Name = name
	}
	if rating, ok := updates["rating"].(float64); ok {
		driver.Rating = rating
	}
	if vehicle, ok := updates["vehicle_info"].(models.VehicleInfo); ok {
		driver.Vehicle = vehicle
	}
	if location, ok := updates["current_location"].(models.GeoPoint); ok {
		driver.CurrentLocation = &location
	}
}

func (f *fakeDriverRepo) UpdateRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	return f.Update(context.Background(), id, map[string]interface{}{"rating": rating})
}

func (f *fakeDriverRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.Driver, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drivers := make([]*models.Driver, 0, len(f.drivers))
	for _, driver := range f.drivers {
		clone := *driver
		drivers = append(drivers, &clone)
	}
	return drivers, int64(len(drivers)), nil
}

func (f *fakeDriverRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.drivers)), nil
}

func (f *fakeDriverRepo) CountByStatus(_ context.Context, status models.DriverStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, driver := range f.drivers {
		if driver.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (f *fakeRideRepo) put(ride *models.Ride) *models.Ride {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	f.rides[ride.ID] = ride
	return ride
}

func (f *fakeRideRepo) Create(_ context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rides {
		if existing.RiderID == ride.RiderID && riderActive(existing.Status) {
			return interfaces.ErrDuplicate
		}
	}
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	if ride.Status == "" {
		ride.Status = models.RideStatusRequested
	}
	f.rides[ride.ID] = ride
	return nil
}

func riderActive(status models.RideStatus) bool {
	for _, s := range models.RiderActiveStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func driverActive(status models.RideStatus) bool {
	for _, s := range models.DriverActiveStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeRideRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) FindActiveByRider(_ context.Context, riderID primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ride := range f.rides {
		if ride.RiderID == riderID && riderActive(ride.Status) {
			clone := *ride
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeRideRepo) FindActiveByDriver(_ context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ride := range f.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID && driverActive(ride.Status) {
			clone := *ride
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeRideRepo) AcceptByDriver(_ context.Context, rideID, driverID primitive.ObjectID, at time.Time) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok || ride.Status != models.RideStatusRequested || ride.DriverID != nil {
		return nil, interfaces.ErrPreconditionFailed
	}
	for _, existing := range f.rides {
		if existing.DriverID != nil && *existing.DriverID == driverID && driverActive(existing.Status) {
			return nil, interfaces.ErrDuplicate
		}
	}
	boundDriver := driverID
	ride.DriverID = &boundDriver
	ride.Status = models.RideStatusAccepted
	ride.Timestamps.AcceptedAt = &at
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) TransitionStatus(_ context.Context, rideID primitive.ObjectID, from, to models.RideStatus, extra map[string]interface{}) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok || ride.Status != from {
		return nil, interfaces.ErrPreconditionFailed
	}
	// Reproduce the unique active-ride indexes: a transition into an active
	// status collides with another active ride held by the same actor.
	if riderActive(to) && !riderActive(from) {
		for _, existing := range f.rides {
			if existing.ID != ride.ID && existing.RiderID == ride.RiderID && riderActive(existing.Status) {
				return nil, interfaces.ErrDuplicate
			}
		}
	}
	if driverActive(to) && !driverActive(from) && ride.DriverID != nil {
		for _, existing := range f.rides {
			if existing.ID != ride.ID && existing.DriverID != nil && *existing.DriverID == *ride.DriverID && driverActive(existing.Status) {
				return nil, interfaces.ErrDuplicate
			}
		}
	}
	ride.Status = to
	now := time.Now()
	switch to {
	case models.RideStatusPickedUp:
		ride.Timestamps.PickedUpAt = &now
	case models.RideStatusInTransit:
		ride.Timestamps.InTransitAt = &now
	case models.RideStatusCompleted:
		ride.Timestamps.CompletedAt = &now
	case models.RideStatusCancelled:
		ride.Timestamps.CancelledAt = &now
	}
	if cancelledBy, ok := extra["cancelled_by"].(primitive.ObjectID); ok {
		ride.CancelledBy = &cancelledBy
	}
	if reason, ok := extra["cancel_reason"].(string); ok {
		ride.CancelReason = reason
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) SetFeedback(_ context.Context, rideID primitive.ObjectID, feedback string, rating *float64) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok || ride.Status != models.RideStatusCompleted || ride.Rating != nil {
		return nil, interfaces.ErrPreconditionFailed
	}
	ride.Feedback = feedback
	if rating != nil {
		value := *rating
		ride.Rating = &value
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) FindRatedByDriver(_ context.Context, driverID primitive.ObjectID) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*models.Ride
	for _, ride := range f.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID && ride.Rating != nil {
			clone := *ride
			rides = append(rides, &clone)
		}
	}
	return rides, nil
}

func (f *fakeRideRepo) ListAvailable(_ context.Context, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*models.Ride
	for _, ride := range f.rides {
		if ride.Status == models.RideStatusRequested && ride.DriverID == nil {
			clone := *ride
			rides = append(rides, &clone)
		}
	}
	return rides, int64(len(rides)), nil
}

func (f *fakeRideRepo) ListByRider(_ context.Context, riderID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*models.Ride
	for _, ride := range f.rides {
		if ride.RiderID == riderID {
			clone := *ride
			rides = append(rides, &clone)
		}
	}
	return rides, int64(len(rides)), nil
}

func (f *fakeRideRepo) ListByDriver(_ context.Context, driverID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*models.Ride
	for _, ride := range f.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID {
			clone := *ride
			rides = append(rides, &clone)
		}
	}
	return rides, int64(len(rides)), nil
}

func (f *fakeRideRepo) ListAll(_ context.Context, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*models.Ride
	for _, ride := range f.rides {
		clone := *ride
		rides = append(rides, &clone)
	}
	return rides, int64(len(rides)), nil
}

func (f *fakeRideRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rides)), nil
}

func (f *fakeRideRepo) CountByStatus(_ context.Context, statuses ...models.RideStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, ride := range f.rides {
		for _, status := range statuses {
			if ride.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return interfaces.ErrNotFound
	}
	if s, ok := dest.(*string); ok {
		*s = value.(string)
		return nil
	}
	return interfaces.ErrNotFound
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	f.entries[key] = value
	return true, nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok, nil
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

type fakeSMS struct {
	mu   sync.Mutex
	sent []*sms.Request
	fail bool
}

func (f *fakeSMS) SendSMS(_ context.Context, request *sms.Request) (*sms.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDelivery
	}
	f.sent = append(f.sent, request)
	return &sms.Response{MessageID: "msg-1", Status: "sent"}, nil
}

var errDelivery = errors.New("provider unavailable")

func testLogger() *logger.Logger {
	return logger.Default()
}

func activeUser(role models.Role) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Name:      "Test User",
		Email:     "test@example.com",
		Phone:     "+8801700000000",
		Role:      role,
		IsActive:  models.ActiveStatusActive,
		IsBlocked: models.Unblocked,
	}
}

func verifiedUser(role models.Role) *models.User {
	user := activeUser(role)
	user.IsVerified = true
	return user
}

func approvedDriverFor(user *models.User) *models.Driver {
	return &models.Driver{
		ID:            primitive.NewObjectID(),
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		NIDNumber:     1234567890,
		LicenseNumber: 9876543210,
		Status:        models.DriverStatusApproved,
		Vehicle:       models.VehicleInfo{Type: models.VehicleTypeCar, Model: "Corolla"},
	}
}

func actorFor(user *models.User) *models.Actor {
	return &models.Actor{UserID: user.ID, Role: user.Role}
}

func requestedRide(riderID primitive.ObjectID) *models.Ride {
	return &models.Ride{
		ID:          primitive.NewObjectID(),
		RiderID:     riderID,
		Pickup:      models.Location{Latitude: 23.81, Longitude: 90.41},
		Destination: models.Location{Latitude: 23.75, Longitude: 90.39},
		Status:      models.RideStatusRequested,
		Timestamps:  models.RideTimestamps{RequestedAt: time.Now()},
	}
}
