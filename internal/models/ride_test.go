package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from RideStatus
		to   RideStatus
		want bool
	}{
		{"requested to accepted", RideStatusRequested, RideStatusAccepted, true},
		{"requested to cancelled", RideStatusRequested, RideStatusCancelled, true},
		{"requested to picked up", RideStatusRequested, RideStatusPickedUp, false},
		{"requested to completed", RideStatusRequested, RideStatusCompleted, false},
		{"accepted to picked up", RideStatusAccepted, RideStatusPickedUp, true},
		{"accepted to cancelled", RideStatusAccepted, RideStatusCancelled, true},
		{"accepted to in transit", RideStatusAccepted, RideStatusInTransit, false},
		{"picked up to in transit", RideStatusPickedUp, RideStatusInTransit, true},
		{"picked up to cancelled", RideStatusPickedUp, RideStatusCancelled, true},
		{"picked up to completed", RideStatusPickedUp, RideStatusCompleted, false},
		{"in transit to completed", RideStatusInTransit, RideStatusCompleted, true},
		{"in transit to cancelled", RideStatusInTransit, RideStatusCancelled, true},
		{"in transit to picked up", RideStatusInTransit, RideStatusPickedUp, false},
		{"completed is terminal", RideStatusCompleted, RideStatusCancelled, false},
		{"cancelled is terminal", RideStatusCancelled, RideStatusRequested, false},
		{"no self transition", RideStatusAccepted, RideStatusAccepted, false},
		{"backwards transition", RideStatusAccepted, RideStatusRequested, false},
		{"unknown status", RideStatus("UNKNOWN"), RideStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRideStatusIsTerminal(t *testing.T) {
	terminal := map[RideStatus]bool{
		RideStatusRequested: false,
		RideStatusAccepted:  false,
		RideStatusPickedUp:  false,
		RideStatusInTransit: false,
		RideStatusCompleted: true,
		RideStatusCancelled: true,
	}

	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestRideStatusIsValid(t *testing.T) {
	for _, status := range []RideStatus{
		RideStatusRequested, RideStatusAccepted, RideStatusPickedUp,
		RideStatusInTransit, RideStatusCompleted, RideStatusCancelled,
	} {
		if !status.IsValid() {
			t.Errorf("%s.IsValid() = false, want true", status)
		}
	}

	if RideStatus("FLYING").IsValid() {
		t.Error("unknown status reported valid")
	}
	if RideStatus("").IsValid() {
		t.Error("empty status reported valid")
	}
}

func TestLocationHasCoordinates(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want bool
	}{
		{"both set", Location{Latitude: 23.81, Longitude: 90.41}, true},
		{"zero latitude", Location{Latitude: 0, Longitude: 90.41}, false},
		{"zero longitude", Location{Latitude: 23.81, Longitude: 0}, false},
		{"both zero", Location{}, false},
		{"negative coordinates", Location{Latitude: -33.87, Longitude: -151.21}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.HasCoordinates(); got != tt.want {
				t.Errorf("HasCoordinates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocationSamePointAs(t *testing.T) {
	a := Location{Latitude: 23.81, Longitude: 90.41, Address: "Mirpur"}
	b := Location{Latitude: 23.81, Longitude: 90.41, Address: "Mirpur-10"}
	c := Location{Latitude: 23.82, Longitude: 90.41}

	if !a.SamePointAs(b) {
		t.Error("identical coordinates with different addresses should match")
	}
	if a.SamePointAs(c) {
		t.Error("different coordinates should not match")
	}
}
