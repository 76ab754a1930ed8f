package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_ListAvailableSpots(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots" WHERE area_id = $1 AND status = $2 AND vehicle_class = $3 ORDER BY spot_number`)).
		WithArgs(int64(7), model.SpotAvailable, "car").
		WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "spot_number", "vehicle_class", "status"}).
			AddRow("spot-1", 7, "1", "car", model.SpotAvailable).
			AddRow("spot-2", 7, "2", "car", model.SpotAvailable))

	spots, err := s.ListAvailableSpots(context.Background(), 7, "car")
	require.NoError(t, err)
	require.Len(t, spots, 2)
	assert.Equal(t, "spot-1", spots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_OccupancySnapshot(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots" WHERE area_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "spot_number", "section_name", "vehicle_class", "status"}).
			AddRow("spot-1", 7, "1", "S", "car", model.SpotReserved).
			AddRow("spot-2", 7, "2", "S", "car", model.SpotAvailable))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings" WHERE user_id = $1 AND area_id = $2 AND status IN ($3,$4)`)).
		WithArgs(int64(42), int64(7), model.BookingActive, model.BookingReserved).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "area_id", "spot_id", "status"}).
			AddRow(1, 42, 7, "spot-1", model.BookingReserved))

	records, err := s.OccupancySnapshot(context.Background(), 7, 42)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "spot-1", records[0].Key)
	assert.True(t, records[0].IsOwnReservation, "user's own reserved spot is flagged")
	assert.False(t, records[1].IsOwnReservation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ReserveSpot(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
	}{
		{
			name: "Success reserves the spot and creates a booking",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WithArgs(int64(42), model.BookingActive, model.BookingReserved).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "vehicles" WHERE "vehicles"."id" = $1`)).
					WithArgs(int64(3), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plate", "class"}).
						AddRow(3, 42, "ABC-123", "car"))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots" WHERE id = $1 AND area_id = $2`)).
					WithArgs("spot-1", int64(7), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "spot_number", "vehicle_class", "status"}).
						AddRow("spot-1", 7, "1", "car", model.SpotAvailable))
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "spots" SET`)).
					WithArgs(model.SpotReserved, Any{}, "spot-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
					WithArgs(Any{}, Any{}, Any{}, Any{}, Any{}, Any{}, Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))
				mock.ExpectCommit()
			},
			expectedErr: nil,
		},
		{
			name: "Existing booking blocks a second reservation",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WithArgs(int64(42), model.BookingActive, model.BookingReserved).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			expectedErr: ErrBookingConflict,
		},
		{
			name: "Spot already reserved loses the race",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WithArgs(int64(42), model.BookingActive, model.BookingReserved).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "vehicles" WHERE "vehicles"."id" = $1`)).
					WithArgs(int64(3), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plate", "class"}).
						AddRow(3, 42, "ABC-123", "car"))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots" WHERE id = $1 AND area_id = $2`)).
					WithArgs("spot-1", int64(7), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "spot_number", "vehicle_class", "status"}).
						AddRow("spot-1", 7, "1", "car", model.SpotReserved))
				mock.ExpectRollback()
			},
			expectedErr: ErrSpotUnavailable,
		},
		{
			name: "Vehicle class mismatch",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WithArgs(int64(42), model.BookingActive, model.BookingReserved).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "vehicles" WHERE "vehicles"."id" = $1`)).
					WithArgs(int64(3), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plate", "class"}).
						AddRow(3, 42, "XYZ-9", "motorcycle"))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots" WHERE id = $1 AND area_id = $2`)).
					WithArgs("spot-1", int64(7), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "spot_number", "vehicle_class", "status"}).
						AddRow("spot-1", 7, "1", "car", model.SpotAvailable))
				mock.ExpectRollback()
			},
			expectedErr: ErrVehicleMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			booking, err := s.ReserveSpot(context.Background(), 42, 3, "spot-1", 7)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(99), booking.ID)
				require.NotNil(t, booking.SpotID)
				assert.Equal(t, "spot-1", *booking.SpotID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ReserveCapacity(t *testing.T) {
	t.Run("Success decrements the guarded count", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
			WithArgs(int64(42), model.BookingActive, model.BookingReserved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "capacity_counts" SET`)).
			WithArgs(Any{}, int64(7), "MC").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
			WithArgs(Any{}, Any{}, Any{}, Any{}, Any{}, Any{}, Any{}, Any{}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectCommit()

		booking, err := s.ReserveCapacity(context.Background(), 42, 2, "MC", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(100), booking.ID)
		require.NotNil(t, booking.SectionName)
		assert.Equal(t, "MC", *booking.SectionName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Full section yields ErrNoCapacity", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
			WithArgs(int64(42), model.BookingActive, model.BookingReserved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "capacity_counts" SET`)).
			WithArgs(Any{}, int64(7), "MC").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.ReserveCapacity(context.Background(), 42, 2, "MC", 7)
		assert.ErrorIs(t, err, ErrNoCapacity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_CancelBooking(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings" WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(99), int64(42), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "vehicle_id", "area_id", "spot_id", "status", "created_at"}).
			AddRow(99, 42, 3, 7, "spot-1", model.BookingReserved, now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET`)).
		WithArgs(model.BookingCancelled, Any{}, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "spots" SET`)).
		WithArgs(model.SpotAvailable, Any{}, "spot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.CancelBooking(context.Background(), 42, 99)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FrequentSpots_ClampsLimit(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT spot_id as spot_id, area_id as area_id, COUNT(*) as count FROM "bookings"`)).
		WithArgs(int64(42), 50).
		WillReturnRows(sqlmock.NewRows([]string{"spot_id", "area_id", "count"}).
			AddRow("spot-1", 7, 12))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "spot_number" FROM "spots"`)).
		WithArgs("spot-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"spot_number"}).AddRow("1"))

	rows, err := s.FrequentSpots(context.Background(), 42, 500)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, FrequentSpotRow{SpotID: "spot-1", AreaID: 7, SpotNumber: "1", Count: 12}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
