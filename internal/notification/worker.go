package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// Push event kinds carried to subscribers.
const (
	EventSpotsUpdated    = "spotsUpdated"
	EventCapacityUpdated = "capacityUpdated"
)

// Job is one area-scoped update to fan out.
type Job struct {
	AreaID int64
	Event  string
}

// pushPayload is the JSON body delivered to subscribers. Clients ignore
// events for areas they are not viewing.
type pushPayload struct {
	Event    string `json:"event"`
	AreaID   int64  `json:"areaId"`
	AreaName string `json:"areaName,omitempty"`
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers fanning out area-update pushes.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForArea(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// sendNotificationsForArea fetches the area's subscribers and pushes the
// update. Subscriptions are bound to areas, so other areas' subscribers are
// never contacted.
func (wp *WorkerPool) sendNotificationsForArea(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_area_mapping sam ON sam.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sam.area_id = ?", job.AreaID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for area %d: %v", job.AreaID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	var area model.Area
	areaName := ""
	if err := wp.db.WithContext(ctx).Select("name").First(&area, job.AreaID).Error; err != nil {
		log.Printf("Error fetching area %d: %v", job.AreaID, err)
	} else {
		areaName = area.Name
	}

	payload, err := json.Marshal(pushPayload{Event: job.Event, AreaID: job.AreaID, AreaName: areaName})
	if err != nil {
		log.Printf("Error marshalling push payload for area %d: %v", job.AreaID, err)
		return
	}

	log.Printf("Sending %d notifications for area %d (%s)", len(subscriptions), job.AreaID, job.Event)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Select("Areas").Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
