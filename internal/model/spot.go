package model

import "time"

// Spot represents a single bookable parking stall. The primary key is the
// stall's identifier from the area's layout markup so that occupancy records
// and parsed regions join without an extra mapping table.
type Spot struct {
	ID           string `gorm:"primaryKey;size:64"`
	AreaID       int64  `gorm:"index;not null"`
	SpotNumber   string `gorm:"size:32;not null"`
	SectionName  string `gorm:"size:64"`
	LocalSlot    string `gorm:"size:32"`
	VehicleClass string `gorm:"size:16;not null"`
	Status       string `gorm:"size:16;not null;default:available"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Area Area `gorm:"constraint:OnDelete:CASCADE"`
}

// Spot status values persisted in the store.
const (
	SpotAvailable = "available"
	SpotOccupied  = "occupied"
	SpotReserved  = "reserved"
)

// CapacityCount is the aggregate occupancy row for a capacity-booked section
// (a zone reserved by available count rather than by individual stall).
type CapacityCount struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	AreaID            int64  `gorm:"index;not null"`
	SectionName       string `gorm:"size:64;not null"`
	VehicleClass      string `gorm:"size:16;not null"`
	TotalCapacity     int    `gorm:"not null"`
	AvailableCapacity int    `gorm:"not null"`
	UpdatedAt         time.Time
}
