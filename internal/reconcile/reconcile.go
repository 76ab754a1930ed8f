// Package reconcile merges parsed layout regions with live occupancy data.
// The merge is a pure function over immutable snapshots: it never mutates
// the region list and is idempotent, so it can be re-run on every refresh.
package reconcile

import (
	"strings"

	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/parse"
)

// Status is the resolved occupancy state of a spot region.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
	StatusUnknown   Status = "unknown"
)

// StatusRecord is one occupancy fact, keyed by spot id or spot number.
type StatusRecord struct {
	Key              string `json:"key"`
	Status           Status `json:"status"`
	VehicleClass     string `json:"vehicleClass"`
	SectionName      string `json:"sectionName"`
	IsOwnReservation bool   `json:"isOwnReservation"`
}

// CapacitySnapshot is the aggregate occupancy for one capacity zone.
type CapacitySnapshot struct {
	SectionName       string `json:"sectionName"`
	VehicleClass      string `json:"vehicleClass"`
	TotalCapacity     int    `json:"totalCapacity"`
	AvailableCapacity int    `json:"availableCapacity"`
}

// Snapshot is an immutable view of one refresh's occupancy data.
type Snapshot struct {
	records    map[string]StatusRecord
	capacities map[string]CapacitySnapshot // keyed by lower-cased section name
}

// BuildSnapshot indexes the raw records for merging. Later records with a
// duplicate key replace earlier ones (the feed is replaced wholesale each
// refresh, so the last fact is the freshest).
func BuildSnapshot(records []StatusRecord, capacities []CapacitySnapshot) Snapshot {
	s := Snapshot{
		records:    make(map[string]StatusRecord, len(records)),
		capacities: make(map[string]CapacitySnapshot, len(capacities)),
	}
	for _, r := range records {
		s.records[r.Key] = r
	}
	for _, c := range capacities {
		s.capacities[strings.ToLower(c.SectionName)] = c
	}
	return s
}

// DecoratedRegion is a region plus its resolved live state. Interactive
// reports whether the region can currently be tapped to start a booking.
type DecoratedRegion struct {
	layout.Region
	Status            Status
	VehicleClass      string
	IsOwnReservation  bool
	Interactive       bool
	TotalCapacity     int
	AvailableCapacity int
	Utilization       float64
}

// Merge decorates every region with the snapshot's occupancy data.
//
// Spot regions resolve a status by the first matching strategy: exact id,
// exact spot number, id with a leading floor prefix stripped, then local
// slot. A spot with no match in a known default layout gets a synthesized
// available status; elsewhere the gap renders as unknown and non-interactive.
func Merge(regions []layout.Region, snap Snapshot, knownDefaultLayout bool) []DecoratedRegion {
	out := make([]DecoratedRegion, 0, len(regions))
	for _, r := range regions {
		switch r.Kind {
		case layout.KindCapacityZone:
			out = append(out, mergeZone(r, snap))
		default:
			out = append(out, mergeSpot(r, snap, knownDefaultLayout))
		}
	}
	return out
}

func mergeSpot(r layout.Region, snap Snapshot, knownDefaultLayout bool) DecoratedRegion {
	d := DecoratedRegion{Region: r, Status: StatusUnknown}

	rec, ok := lookupSpot(r, snap)
	if ok {
		d.Status = rec.Status
		d.VehicleClass = rec.VehicleClass
		d.IsOwnReservation = rec.IsOwnReservation
		d.Interactive = true
		return d
	}

	if knownDefaultLayout {
		// An upstream data gap must not render a whole known area as
		// non-interactive.
		d.Status = StatusAvailable
		d.Interactive = true
	}
	return d
}

func lookupSpot(r layout.Region, snap Snapshot) (StatusRecord, bool) {
	if rec, ok := snap.records[r.ID]; ok {
		return rec, true
	}
	if r.SpotNumber != "" {
		if rec, ok := snap.records[r.SpotNumber]; ok {
			return rec, true
		}
	}
	if stripped := parse.StripFloorPrefix(r.ID); stripped != r.ID {
		if rec, ok := snap.records[stripped]; ok {
			return rec, true
		}
	}
	if r.LocalSlot != "" {
		if rec, ok := snap.records[r.LocalSlot]; ok {
			return rec, true
		}
	}
	return StatusRecord{}, false
}

func mergeZone(r layout.Region, snap Snapshot) DecoratedRegion {
	d := DecoratedRegion{Region: r, Status: StatusUnknown}

	cap, ok := snap.capacities[strings.ToLower(r.SectionName)]
	if !ok {
		return d
	}

	d.VehicleClass = cap.VehicleClass
	d.TotalCapacity = cap.TotalCapacity
	d.AvailableCapacity = cap.AvailableCapacity
	d.Interactive = cap.AvailableCapacity > 0
	if cap.AvailableCapacity > 0 {
		d.Status = StatusAvailable
	} else {
		d.Status = StatusOccupied
	}
	if cap.TotalCapacity > 0 {
		d.Utilization = float64(cap.TotalCapacity-cap.AvailableCapacity) / float64(cap.TotalCapacity)
	}
	return d
}
