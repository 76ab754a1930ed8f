package booking

import (
	"context"

	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/reconcile"
)

// Area is one parking area as reported by the collaborator.
type Area struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	HasLayout bool   `json:"hasLayout"`
}

// Spot is one bookable stall as reported by the collaborator.
type Spot struct {
	ID           string `json:"id"`
	AreaID       int64  `json:"areaId"`
	SpotNumber   string `json:"spotNumber"`
	SectionName  string `json:"sectionName"`
	VehicleClass string `json:"vehicleClass"`
	Status       string `json:"status"`
}

// Vehicle is one of the acting user's registered vehicles.
type Vehicle struct {
	ID    int64  `json:"id"`
	Plate string `json:"plate"`
	Class string `json:"class"`
}

// Booking is an existing reservation held by the acting user.
type Booking struct {
	ID          int64  `json:"id"`
	AreaID      int64  `json:"areaId"`
	AreaName    string `json:"areaName"`
	SpotID      string `json:"spotId"`
	SpotNumber  string `json:"spotNumber"`
	SectionName string `json:"sectionName"`
	VehicleID   int64  `json:"vehicleId"`
	Status      string `json:"status"`
}

// FrequentSpot is one entry of the user's most-booked spots.
type FrequentSpot struct {
	SpotID     string `json:"spotId"`
	AreaID     int64  `json:"areaId"`
	SpotNumber string `json:"spotNumber"`
	Count      int    `json:"count"`
}

// LayoutMarkup is an area's layout response: the raw diagram plus optional
// section hints. HasLayout false is the valid "no layout data" state.
type LayoutMarkup struct {
	HasLayout    bool
	Markup       string
	SectionHints []layout.SectionHint
}

// Result is the collaborator's answer to a reservation request. A non-empty
// Code classifies the failure; an empty Code with a BookingID is success.
type Result struct {
	BookingID   int64  `json:"bookingId"`
	SpotID      string `json:"spotId"`
	SectionName string `json:"sectionName"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// Error codes carried on collaborator responses.
const (
	CodeSpotUnavailable     = "SPOT_UNAVAILABLE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeVehicleMismatch     = "VEHICLE_TYPE_MISMATCH"
	CodeBookingConflict     = "BOOKING_CONFLICT"
)

// Client is the booking/status collaborator consumed by the orchestrator.
type Client interface {
	ListAreas(ctx context.Context) ([]Area, error)
	ListSpots(ctx context.Context, areaID int64, vehicleClass string) ([]Spot, error)
	GetOccupancySnapshot(ctx context.Context, areaID int64) ([]reconcile.StatusRecord, error)
	GetCapacitySnapshot(ctx context.Context, areaID int64) ([]reconcile.CapacitySnapshot, error)
	GetLayoutMarkup(ctx context.Context, areaID int64) (LayoutMarkup, error)
	ListOwnActiveOrReservedBookings(ctx context.Context) ([]Booking, error)
	ReserveSpot(ctx context.Context, vehicleID int64, spotID string, areaID int64) (Result, error)
	ReserveCapacityZone(ctx context.Context, sectionName string, vehicleID, areaID int64) (Result, error)
	ListFrequentSpots(ctx context.Context, limit int) ([]FrequentSpot, error)
}

// SpotClassFor maps a vehicle class to the spot class it parks in. The
// two-wheeled classes share the "bike" stalls.
func SpotClassFor(vehicleClass string) string {
	switch vehicleClass {
	case "motorcycle", "bicycle", "scooter":
		return "bike"
	default:
		return vehicleClass
	}
}

// FilterVehicles returns the vehicles compatible with the given spot class.
// An empty spot class filters nothing.
func FilterVehicles(vehicles []Vehicle, spotClass string) []Vehicle {
	if spotClass == "" {
		return vehicles
	}
	out := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if SpotClassFor(v.Class) == spotClass {
			out = append(out, v)
		}
	}
	return out
}
