package api

import (
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	pool    *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		pool:    pool,
	}
}

// userID extracts the acting user from the X-User-ID header. Authentication
// is handled upstream of this service; 0 means anonymous.
func userID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	return id
}

func (h *Handler) notify(areaID int64, event string) {
	if h.pool == nil {
		return
	}
	h.pool.Dispatch(notification.Job{AreaID: areaID, Event: event})
}
