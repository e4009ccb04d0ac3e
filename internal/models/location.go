package models

// Location is a pickup or destination point on a ride.
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"required,min=-180,max=180"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// HasCoordinates reports whether both coordinates are present. A zero
// latitude or longitude is treated as missing.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 && l.Longitude != 0
}

// SamePointAs reports coordinate identity, ignoring the address.
func (l Location) SamePointAs(other Location) bool {
	return l.Latitude == other.Latitude && l.Longitude == other.Longitude
}

// GeoPoint is a driver's last reported position.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}
