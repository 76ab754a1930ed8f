package model

import "time"

// Area represents one physical parking facility area (a lot, a floor of a
// garage, or an outdoor yard).
type Area struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// LayoutMarkup holds the raw vector diagram for the area, empty when the
	// area has no interactive layout.
	LayoutMarkup string `gorm:"type:text"`

	// Associations
	Spots    []Spot        `gorm:"foreignKey:AreaID"`
	Sections []AreaSection `gorm:"foreignKey:AreaID"`
}

// AreaSection is a semantic hint for one named section of an area's layout:
// whether it books by individual slot or by available count, and where its
// group sits in the diagram's grid.
type AreaSection struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	AreaID   int64  `gorm:"index;not null"`
	Name     string `gorm:"size:64;not null"`
	Mode     string `gorm:"size:16;not null"` // "capacity_only" or "slot_based"
	GridX    int
	GridY    int
	Capacity int
}
