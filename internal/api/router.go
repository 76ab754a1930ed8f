package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/mw"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, webpushOptions, pool)

	limit := rate.Limit(10)
	if cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	rateLimiter := mw.RateLimiter(limit, 5, cfg.RequestIPHeader)

	ttl := 5 * time.Second
	if cfg.CacheTTLSeconds > 0 {
		ttl = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	cacheStore := cache.New(ttl, 10*time.Minute)
	caching := mw.Cache(cacheStore, ttl)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/areas", caching, GetAreas(db))
		api.GET("/areas/:area_id/spots", handler.GetSpots)
		api.GET("/areas/:area_id/occupancy", caching, handler.GetOccupancy)
		api.GET("/areas/:area_id/capacity", caching, handler.GetCapacity)
		api.GET("/areas/:area_id/layout", caching, handler.GetLayout)
		api.PUT("/areas/:area_id/layout", handler.PutLayout)

		api.GET("/bookings/active", handler.GetActiveBookings)
		api.DELETE("/bookings/:booking_id", handler.DeleteBooking)
		api.POST("/reservations/spot", handler.PostReserveSpot)
		api.POST("/reservations/capacity", handler.PostReserveCapacity)
		api.GET("/spots/frequent", handler.GetFrequentSpots)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
