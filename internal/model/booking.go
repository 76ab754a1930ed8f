package model

import "time"

// Vehicle is a registered vehicle belonging to a user.
type Vehicle struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	Plate     string `gorm:"size:32;not null"`
	Class     string `gorm:"size:16;not null"` // "car", "motorcycle", "bicycle", "scooter"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is one reservation of a spot or of a capacity section.
// Exactly one of SpotID / SectionName is set.
type Booking struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	UserID      int64   `gorm:"index;not null"`
	VehicleID   int64   `gorm:"not null"`
	AreaID      int64   `gorm:"index;not null"`
	SpotID      *string `gorm:"size:64"`
	SectionName *string `gorm:"size:64"`
	Status      string  `gorm:"size:16;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Vehicle Vehicle
	Area    Area
}

// Booking status values.
const (
	BookingActive    = "active"
	BookingReserved  = "reserved"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)
