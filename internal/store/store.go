package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parking-reservation-backend/internal/booking"
	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/reconcile"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListAreas(ctx context.Context) ([]model.Area, error)
	ListAvailableSpots(ctx context.Context, areaID int64, spotClass string) ([]model.Spot, error)
	OccupancySnapshot(ctx context.Context, areaID, userID int64) ([]reconcile.StatusRecord, error)
	CapacitySnapshot(ctx context.Context, areaID int64) ([]model.CapacityCount, error)
	AreaLayout(ctx context.Context, areaID int64) (model.Area, []model.AreaSection, error)
	ReplaceAreaLayout(ctx context.Context, areaID int64, markup string, regions []layout.Region) error

	ActiveBookings(ctx context.Context, userID int64) ([]model.Booking, error)
	ReserveSpot(ctx context.Context, userID, vehicleID int64, spotID string, areaID int64) (model.Booking, error)
	ReserveCapacity(ctx context.Context, userID, vehicleID int64, sectionName string, areaID int64) (model.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) error
	FrequentSpots(ctx context.Context, userID int64, limit int) ([]FrequentSpotRow, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) ListAreas(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	if err := s.db.WithContext(ctx).Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return areas, nil
}

func (s *gormStore) ListAvailableSpots(ctx context.Context, areaID int64, spotClass string) ([]model.Spot, error) {
	q := s.db.WithContext(ctx).
		Where("area_id = ? AND status = ?", areaID, model.SpotAvailable)
	if spotClass != "" {
		q = q.Where("vehicle_class = ?", spotClass)
	}
	var spots []model.Spot
	if err := q.Order("spot_number").Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to list spots for area %d: %w", areaID, err)
	}
	return spots, nil
}

// OccupancySnapshot builds the status-record feed for an area. Keys are spot
// ids; the reconciler's fallback strategies handle the rest.
func (s *gormStore) OccupancySnapshot(ctx context.Context, areaID, userID int64) ([]reconcile.StatusRecord, error) {
	var spots []model.Spot
	if err := s.db.WithContext(ctx).Where("area_id = ?", areaID).Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to load spots for area %d: %w", areaID, err)
	}

	own := make(map[string]bool)
	if userID != 0 {
		var bookings []model.Booking
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND area_id = ? AND status IN ?", userID, areaID,
				[]string{model.BookingActive, model.BookingReserved}).
			Find(&bookings).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load own bookings: %w", err)
		}
		for _, b := range bookings {
			if b.SpotID != nil {
				own[*b.SpotID] = true
			}
		}
	}

	records := make([]reconcile.StatusRecord, 0, len(spots))
	for _, sp := range spots {
		records = append(records, reconcile.StatusRecord{
			Key:              sp.ID,
			Status:           reconcile.Status(sp.Status),
			VehicleClass:     sp.VehicleClass,
			SectionName:      sp.SectionName,
			IsOwnReservation: own[sp.ID],
		})
	}
	return records, nil
}

func (s *gormStore) CapacitySnapshot(ctx context.Context, areaID int64) ([]model.CapacityCount, error) {
	var counts []model.CapacityCount
	if err := s.db.WithContext(ctx).Where("area_id = ?", areaID).Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to load capacity counts for area %d: %w", areaID, err)
	}
	return counts, nil
}

func (s *gormStore) AreaLayout(ctx context.Context, areaID int64) (model.Area, []model.AreaSection, error) {
	var area model.Area
	if err := s.db.WithContext(ctx).First(&area, areaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Area{}, nil, ErrNotFound
		}
		return model.Area{}, nil, fmt.Errorf("failed to load area %d: %w", areaID, err)
	}
	var sections []model.AreaSection
	if err := s.db.WithContext(ctx).Where("area_id = ?", areaID).Find(&sections).Error; err != nil {
		return model.Area{}, nil, fmt.Errorf("failed to load sections for area %d: %w", areaID, err)
	}
	return area, sections, nil
}

// ReplaceAreaLayout stores a new layout markup for an area and upserts the
// spot and capacity rows derived from its parsed regions. Existing rows keep
// their live status; only descriptive columns are refreshed.
func (s *gormStore) ReplaceAreaLayout(ctx context.Context, areaID int64, markup string, regions []layout.Region) error {
	var spots []model.Spot
	var zones []layout.Region
	for _, r := range regions {
		if r.Kind == layout.KindCapacityZone {
			zones = append(zones, r)
			continue
		}
		spots = append(spots, model.Spot{
			ID:           r.ID,
			AreaID:       areaID,
			SpotNumber:   r.SpotNumber,
			SectionName:  r.SectionName,
			LocalSlot:    r.LocalSlot,
			VehicleClass: "car",
			Status:       model.SpotAvailable,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Area{}).Where("id = ?", areaID).
			Update("layout_markup", markup).Error; err != nil {
			return fmt.Errorf("failed to update layout markup for area %d: %w", areaID, err)
		}

		if len(spots) > 0 {
			log.Printf("Batch upserting %d spots for area %d...", len(spots), areaID)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"spot_number", "section_name", "local_slot", "updated_at"}),
			}).Create(&spots).Error; err != nil {
				return fmt.Errorf("batch upsert spots failed: %w", err)
			}
		}

		for _, z := range zones {
			var existing model.CapacityCount
			err := tx.Where("area_id = ? AND section_name = ?", areaID, z.SectionName).
				First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&model.CapacityCount{
					AreaID:       areaID,
					SectionName:  z.SectionName,
					VehicleClass: "bike",
				}).Error; err != nil {
					return fmt.Errorf("failed to create capacity row for section %q: %w", z.SectionName, err)
				}
			} else if err != nil {
				return fmt.Errorf("failed to look up capacity row for section %q: %w", z.SectionName, err)
			}
		}
		return nil
	})
}

func (s *gormStore) ActiveBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).Preload("Area").Preload("Vehicle").
		Where("user_id = ? AND status IN ?", userID,
			[]string{model.BookingActive, model.BookingReserved}).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings for user %d: %w", userID, err)
	}
	return bookings, nil
}

// ReserveSpot creates a reservation transactionally. Contention for the same
// physical spot resolves inside the transaction: the row is re-read with an
// update lock and the loser gets ErrSpotUnavailable.
func (s *gormStore) ReserveSpot(ctx context.Context, userID, vehicleID int64, spotID string, areaID int64) (model.Booking, error) {
	var created model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Booking{}).
			Where("user_id = ? AND status IN ?", userID,
				[]string{model.BookingActive, model.BookingReserved}).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count active bookings: %w", err)
		}
		if existing > 0 {
			return ErrBookingConflict
		}

		var vehicle model.Vehicle
		if err := tx.First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load vehicle %d: %w", vehicleID, err)
		}

		var spot model.Spot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND area_id = ?", spotID, areaID).
			First(&spot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load spot %q: %w", spotID, err)
		}
		if spot.Status != model.SpotAvailable {
			return ErrSpotUnavailable
		}
		if spot.VehicleClass != booking.SpotClassFor(vehicle.Class) {
			return ErrVehicleMismatch
		}

		if err := tx.Model(&model.Spot{}).Where("id = ?", spotID).
			Update("status", model.SpotReserved).Error; err != nil {
			return fmt.Errorf("failed to mark spot %q reserved: %w", spotID, err)
		}

		created = model.Booking{
			UserID:    userID,
			VehicleID: vehicleID,
			AreaID:    areaID,
			SpotID:    &spotID,
			Status:    model.BookingReserved,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return created, nil
}

// ReserveCapacity books one unit of a capacity section. The decrement is
// guarded by the row's current value, so concurrent bookings cannot drive
// the count below zero.
func (s *gormStore) ReserveCapacity(ctx context.Context, userID, vehicleID int64, sectionName string, areaID int64) (model.Booking, error) {
	var created model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Booking{}).
			Where("user_id = ? AND status IN ?", userID,
				[]string{model.BookingActive, model.BookingReserved}).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count active bookings: %w", err)
		}
		if existing > 0 {
			return ErrBookingConflict
		}

		res := tx.Model(&model.CapacityCount{}).
			Where("area_id = ? AND section_name = ? AND available_capacity > 0", areaID, sectionName).
			Update("available_capacity", gorm.Expr("available_capacity - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement capacity for section %q: %w", sectionName, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoCapacity
		}

		created = model.Booking{
			UserID:      userID,
			VehicleID:   vehicleID,
			AreaID:      areaID,
			SectionName: &sectionName,
			Status:      model.BookingReserved,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create capacity booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return created, nil
}

// CancelBooking cancels one of the user's bookings and releases its spot or
// capacity unit.
func (s *gormStore) CancelBooking(ctx context.Context, userID, bookingID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Booking
		if err := tx.Where("id = ? AND user_id = ?", bookingID, userID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
		}
		if b.Status != model.BookingActive && b.Status != model.BookingReserved {
			return ErrNotFound
		}

		if err := tx.Model(&model.Booking{}).Where("id = ?", b.ID).
			Update("status", model.BookingCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel booking %d: %w", b.ID, err)
		}

		if b.SpotID != nil {
			if err := tx.Model(&model.Spot{}).Where("id = ?", *b.SpotID).
				Update("status", model.SpotAvailable).Error; err != nil {
				return fmt.Errorf("failed to release spot %q: %w", *b.SpotID, err)
			}
		}
		if b.SectionName != nil {
			if err := tx.Model(&model.CapacityCount{}).
				Where("area_id = ? AND section_name = ?", b.AreaID, *b.SectionName).
				Update("available_capacity", gorm.Expr("available_capacity + 1")).Error; err != nil {
				return fmt.Errorf("failed to release capacity for section %q: %w", *b.SectionName, err)
			}
		}
		return nil
	})
}

// FrequentSpots aggregates the user's most-booked spots, most recent first
// among ties.
func (s *gormStore) FrequentSpots(ctx context.Context, userID int64, limit int) ([]FrequentSpotRow, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	type aggRow struct {
		SpotID string
		AreaID int64
		Count  int
	}
	var aggs []aggRow
	err := s.db.WithContext(ctx).Model(&model.Booking{}).
		Select("spot_id as spot_id, area_id as area_id, COUNT(*) as count").
		Where("user_id = ? AND spot_id IS NOT NULL", userID).
		Group("spot_id, area_id").
		Order("count DESC, MAX(created_at) DESC").
		Limit(limit).
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate frequent spots: %w", err)
	}

	rows := make([]FrequentSpotRow, 0, len(aggs))
	for _, a := range aggs {
		var spot model.Spot
		number := ""
		if err := s.db.WithContext(ctx).Select("spot_number").First(&spot, "id = ?", a.SpotID).Error; err == nil {
			number = spot.SpotNumber
		}
		rows = append(rows, FrequentSpotRow{
			SpotID:     a.SpotID,
			AreaID:     a.AreaID,
			SpotNumber: number,
			Count:      a.Count,
		})
	}
	return rows, nil
}
