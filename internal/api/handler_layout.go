package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// sectionHintResponse is one section hint on the wire.
type sectionHintResponse struct {
	SectionName string  `json:"sectionName"`
	Mode        string  `json:"mode"`
	GridX       float64 `json:"gridX"`
	GridY       float64 `json:"gridY"`
}

// layoutResponse is the layout endpoint's body. hasLayout false with empty
// markup is the valid "no layout data" state, not an error.
type layoutResponse struct {
	HasLayout    bool                  `json:"hasLayout"`
	Markup       string                `json:"markup,omitempty"`
	SectionHints []sectionHintResponse `json:"sectionHints,omitempty"`
}

// GetLayout handles GET /api/areas/{area_id}/layout.
func (h *Handler) GetLayout(c *gin.Context) {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid area ID"})
		return
	}

	area, sections, err := h.store.AreaLayout(c.Request.Context(), areaID)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Area not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve layout"})
		return
	}

	resp := layoutResponse{
		HasLayout: area.LayoutMarkup != "",
		Markup:    area.LayoutMarkup,
	}
	for _, s := range sections {
		resp.SectionHints = append(resp.SectionHints, sectionHintResponse{
			SectionName: s.Name,
			Mode:        s.Mode,
			GridX:       float64(s.GridX),
			GridY:       float64(s.GridY),
		})
	}
	c.JSON(http.StatusOK, resp)
}

type putLayoutRequest struct {
	Markup string `json:"markup" binding:"required"`
}

// PutLayout handles PUT /api/areas/{area_id}/layout: stores the raw markup,
// parses it and refreshes the area's spot and capacity rows from the parsed
// regions.
func (h *Handler) PutLayout(c *gin.Context) {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid area ID"})
		return
	}

	var req putLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, sections, err := h.store.AreaLayout(c.Request.Context(), areaID)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Area not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load area"})
		return
	}

	lay, err := layout.Parse(req.Markup, hintsFromSections(sections))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unparseable layout markup"})
		return
	}

	if err := h.store.ReplaceAreaLayout(c.Request.Context(), areaID, req.Markup, lay.Regions); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to store layout"})
		return
	}

	h.notify(areaID, notification.EventSpotsUpdated)
	c.JSON(http.StatusOK, gin.H{"regions": len(lay.Regions)})
}

func hintsFromSections(sections []model.AreaSection) []layout.SectionHint {
	hints := make([]layout.SectionHint, 0, len(sections))
	for _, s := range sections {
		mode := layout.ModeSlotBased
		if s.Mode == "capacity_only" {
			mode = layout.ModeCapacityOnly
		}
		hints = append(hints, layout.SectionHint{
			SectionName: s.Name,
			Mode:        mode,
			GridX:       float64(s.GridX),
			GridY:       float64(s.GridY),
		})
	}
	return hints
}
