package store

import "errors"

// FrequentSpotRow is one aggregated row of a user's most-booked spots.
type FrequentSpotRow struct {
	SpotID     string
	AreaID     int64
	SpotNumber string
	Count      int
}

// Booking-domain errors surfaced by the store. Handlers map these onto the
// error codes of the collaborator contract.
var (
	ErrSpotUnavailable = errors.New("store: spot is not available")
	ErrNoCapacity      = errors.New("store: no capacity available in section")
	ErrBookingConflict = errors.New("store: user already holds an active or reserved booking")
	ErrVehicleMismatch = errors.New("store: vehicle class does not match spot class")
	ErrNotFound        = errors.New("store: record not found")
)
