package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// AreaResponse represents the API response for a single area.
type AreaResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	HasLayout  bool   `json:"hasLayout"`
	TotalSpots int64  `json:"totalSpots"`
}

// GetAreas handles the GET /api/areas request.
func GetAreas(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var areas []model.Area
		if err := db.Find(&areas).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve areas"})
			return
		}

		type aggRow struct {
			AreaID     int64
			TotalSpots int64
		}
		var aggs []aggRow
		if err := db.
			Model(&model.Spot{}).
			Select("area_id as area_id, COUNT(*) as total_spots").
			Group("area_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate spots"})
			return
		}

		aggMap := make(map[int64]aggRow, len(aggs))
		for _, a := range aggs {
			aggMap[a.AreaID] = a
		}

		responses := make([]AreaResponse, 0, len(areas))
		for _, a := range areas {
			agg := aggMap[a.ID]
			responses = append(responses, AreaResponse{
				ID:         a.ID,
				Name:       a.Name,
				HasLayout:  a.LayoutMarkup != "",
				TotalSpots: agg.TotalSpots,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// SpotResponse represents one available spot in the API response.
type SpotResponse struct {
	ID           string `json:"id"`
	AreaID       int64  `json:"areaId"`
	SpotNumber   string `json:"spotNumber"`
	SectionName  string `json:"sectionName"`
	VehicleClass string `json:"vehicleClass"`
	Status       string `json:"status"`
}

// GetSpots handles GET /api/areas/{area_id}/spots, returning available
// spots optionally filtered by vehicle class.
func (h *Handler) GetSpots(c *gin.Context) {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid area ID"})
		return
	}

	spots, err := h.store.ListAvailableSpots(c.Request.Context(), areaID, c.Query("vehicle_class"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spots"})
		return
	}

	responses := make([]SpotResponse, 0, len(spots))
	for _, s := range spots {
		responses = append(responses, SpotResponse{
			ID:           s.ID,
			AreaID:       s.AreaID,
			SpotNumber:   s.SpotNumber,
			SectionName:  s.SectionName,
			VehicleClass: s.VehicleClass,
			Status:       s.Status,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// GetOccupancy handles GET /api/areas/{area_id}/occupancy: the full status
// snapshot for the area, one record per spot.
func (h *Handler) GetOccupancy(c *gin.Context) {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid area ID"})
		return
	}

	records, err := h.store.OccupancySnapshot(c.Request.Context(), areaID, userID(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build occupancy snapshot"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// CapacityResponse is the aggregate occupancy of one capacity zone.
type CapacityResponse struct {
	SectionName       string `json:"sectionName"`
	VehicleClass      string `json:"vehicleClass"`
	TotalCapacity     int    `json:"totalCapacity"`
	AvailableCapacity int    `json:"availableCapacity"`
}

// GetCapacity handles GET /api/areas/{area_id}/capacity.
func (h *Handler) GetCapacity(c *gin.Context) {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid area ID"})
		return
	}

	counts, err := h.store.CapacitySnapshot(c.Request.Context(), areaID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve capacity"})
		return
	}

	responses := make([]CapacityResponse, 0, len(counts))
	for _, cc := range counts {
		responses = append(responses, CapacityResponse{
			SectionName:       cc.SectionName,
			VehicleClass:      cc.VehicleClass,
			TotalCapacity:     cc.TotalCapacity,
			AvailableCapacity: cc.AvailableCapacity,
		})
	}
	c.JSON(http.StatusOK, responses)
}
