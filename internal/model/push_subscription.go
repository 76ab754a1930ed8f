package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription is bound to the areas whose occupancy updates it wants.
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	UserID    int64  `gorm:"index"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Areas []*Area `gorm:"many2many:subscription_area_mapping;"`
}
