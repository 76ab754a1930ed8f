package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// DeleteBooking handles DELETE /api/bookings/{booking_id}: cancels one of
// the acting user's bookings, releasing its spot or capacity unit.
func (h *Handler) DeleteBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	uid := userID(c)
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID is required"})
		return
	}

	// Need the area for the update push before the row changes hands.
	var b model.Booking
	areaID := int64(0)
	if err := h.store.DB().Select("area_id").First(&b, bookingID).Error; err == nil {
		areaID = b.AreaID
	}

	if err := h.store.CancelBooking(c.Request.Context(), uid, bookingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	if areaID != 0 {
		h.notify(areaID, notification.EventSpotsUpdated)
	}
	c.Status(http.StatusNoContent)
}

// frequentSpotResponse is one entry of GET /api/spots/frequent.
type frequentSpotResponse struct {
	SpotID     string `json:"spotId"`
	AreaID     int64  `json:"areaId"`
	SpotNumber string `json:"spotNumber"`
	Count      int    `json:"count"`
}

// GetFrequentSpots handles GET /api/spots/frequent?limit=N.
func (h *Handler) GetFrequentSpots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	rows, err := h.store.FrequentSpots(c.Request.Context(), userID(c), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve frequent spots"})
		return
	}

	responses := make([]frequentSpotResponse, 0, len(rows))
	for _, r := range rows {
		responses = append(responses, frequentSpotResponse{
			SpotID:     r.SpotID,
			AreaID:     r.AreaID,
			SpotNumber: r.SpotNumber,
			Count:      r.Count,
		})
	}
	c.JSON(http.StatusOK, responses)
}
