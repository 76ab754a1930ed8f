package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/booking"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

type reserveSpotRequest struct {
	VehicleID int64  `json:"vehicleId" binding:"required"`
	SpotID    string `json:"spotId" binding:"required"`
	AreaID    int64  `json:"areaId" binding:"required"`
}

type reserveCapacityRequest struct {
	SectionName string `json:"sectionName" binding:"required"`
	VehicleID   int64  `json:"vehicleId" binding:"required"`
	AreaID      int64  `json:"areaId" binding:"required"`
}

// reservationResponse mirrors booking.Result on the wire: business failures
// travel as an error code on a 200 response so clients can classify them;
// transport-level problems use HTTP status codes.
type reservationResponse struct {
	BookingID   int64  `json:"bookingId,omitempty"`
	SpotID      string `json:"spotId,omitempty"`
	SectionName string `json:"sectionName,omitempty"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
}

// PostReserveSpot handles POST /api/reservations/spot.
func (h *Handler) PostReserveSpot(c *gin.Context) {
	var req reserveSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := userID(c)
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID is required"})
		return
	}

	b, err := h.store.ReserveSpot(c.Request.Context(), uid, req.VehicleID, req.SpotID, req.AreaID)
	if err != nil {
		c.JSON(http.StatusOK, classifyReservationError(err))
		return
	}

	h.notify(req.AreaID, notification.EventSpotsUpdated)
	c.JSON(http.StatusOK, reservationResponse{
		BookingID: b.ID,
		SpotID:    req.SpotID,
	})
}

// PostReserveCapacity handles POST /api/reservations/capacity.
func (h *Handler) PostReserveCapacity(c *gin.Context) {
	var req reserveCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := userID(c)
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID is required"})
		return
	}

	b, err := h.store.ReserveCapacity(c.Request.Context(), uid, req.VehicleID, req.SectionName, req.AreaID)
	if err != nil {
		c.JSON(http.StatusOK, classifyReservationError(err))
		return
	}

	h.notify(req.AreaID, notification.EventCapacityUpdated)
	c.JSON(http.StatusOK, reservationResponse{
		BookingID:   b.ID,
		SectionName: req.SectionName,
	})
}

// classifyReservationError maps store errors onto the contract's error
// codes. Unclassified errors become a generic failure without internal
// detail.
func classifyReservationError(err error) reservationResponse {
	switch {
	case errors.Is(err, store.ErrSpotUnavailable), errors.Is(err, store.ErrNoCapacity):
		return reservationResponse{Code: booking.CodeSpotUnavailable, Message: "Spot is no longer available"}
	case errors.Is(err, store.ErrBookingConflict):
		return reservationResponse{Code: booking.CodeBookingConflict, Message: "An active or reserved booking already exists"}
	case errors.Is(err, store.ErrVehicleMismatch):
		return reservationResponse{Code: booking.CodeVehicleMismatch, Message: "Vehicle class does not match the spot"}
	case errors.Is(err, store.ErrNotFound):
		return reservationResponse{Code: booking.CodeSpotUnavailable, Message: "Spot not found"}
	default:
		return reservationResponse{Code: "RESERVATION_FAILED", Message: "Reservation could not be completed"}
	}
}

// bookingResponse is one of the user's bookings on the wire.
type bookingResponse struct {
	ID          int64  `json:"id"`
	AreaID      int64  `json:"areaId"`
	AreaName    string `json:"areaName"`
	SpotID      string `json:"spotId,omitempty"`
	SpotNumber  string `json:"spotNumber,omitempty"`
	SectionName string `json:"sectionName,omitempty"`
	VehicleID   int64  `json:"vehicleId"`
	Status      string `json:"status"`
}

// GetActiveBookings handles GET /api/bookings/active: the acting user's
// active and reserved bookings, with enough location detail to show where
// a conflicting reservation lives.
func (h *Handler) GetActiveBookings(c *gin.Context) {
	uid := userID(c)
	bookings, err := h.store.ActiveBookings(c.Request.Context(), uid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bookings"})
		return
	}

	responses := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp := bookingResponse{
			ID:        b.ID,
			AreaID:    b.AreaID,
			AreaName:  b.Area.Name,
			VehicleID: b.VehicleID,
			Status:    b.Status,
		}
		if b.SpotID != nil {
			resp.SpotID = *b.SpotID
			var spot model.Spot
			if err := h.store.DB().Select("spot_number").First(&spot, "id = ?", *b.SpotID).Error; err == nil {
				resp.SpotNumber = spot.SpotNumber
			}
		}
		if b.SectionName != nil {
			resp.SectionName = *b.SectionName
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}
