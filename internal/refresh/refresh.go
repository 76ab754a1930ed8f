// Package refresh keeps a layout session's decorated region view current.
// Push events trigger a re-fetch of the occupancy and capacity snapshots,
// throttled to a minimum interval so bursty notifications cannot cause a
// refresh storm.
package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"parking-reservation-backend/internal/booking"
	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/reconcile"
)

// Event is one push-channel notification. Events for a different area than
// the open session are ignored.
type Event struct {
	Kind   string
	AreaID int64
}

// View is the refreshed, decorated region list handed to the consumer.
type View struct {
	AreaID  int64
	Layout  *layout.Layout
	Regions []reconcile.DecoratedRegion
}

// Refresher owns one "current layout session" at a time. Opening a new
// layout or closing the view supersedes the session wholesale; a snapshot
// response arriving for a superseded session is detected by session
// identity and dropped.
type Refresher struct {
	client   booking.Client
	limiter  *rate.Limiter
	onUpdate func(View)

	mu      sync.Mutex
	session uint64
	areaID  int64
	lay     *layout.Layout
}

// New creates a Refresher delivering refreshed views to onUpdate. At most
// one refresh runs per minInterval.
func New(client booking.Client, minInterval time.Duration, onUpdate func(View)) *Refresher {
	return &Refresher{
		client:   client,
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		onUpdate: onUpdate,
	}
}

// OpenLayout fetches and parses the area's layout and starts a new layout
// session, superseding any previous one. An area without markup yields an
// empty layout, which is a valid state, not an error.
func (r *Refresher) OpenLayout(ctx context.Context, areaID int64) (*layout.Layout, error) {
	lm, err := r.client.GetLayoutMarkup(ctx, areaID)
	if err != nil {
		return nil, err
	}

	lay := &layout.Layout{}
	if lm.HasLayout {
		lay, err = layout.Parse(lm.Markup, lm.SectionHints)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.session++
	r.areaID = areaID
	r.lay = lay
	r.mu.Unlock()
	return lay, nil
}

// Close discards the current layout session. Outstanding snapshot fetches
// become stale and their results are ignored.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.session++
	r.areaID = 0
	r.lay = nil
	r.mu.Unlock()
}

// Run consumes push events until the context is cancelled.
func (r *Refresher) Run(ctx context.Context, events <-chan Event) {
	log.Println("Starting refresh routine...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Refresh routine shutting down.")
			return
		case ev := <-events:
			r.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes one push event: other-area events are dropped, and
// bursts collapse into at most one refresh per minimum interval.
func (r *Refresher) HandleEvent(ctx context.Context, ev Event) {
	r.mu.Lock()
	session, areaID, lay := r.session, r.areaID, r.lay
	r.mu.Unlock()

	if lay == nil || ev.AreaID != areaID {
		return
	}
	if !r.limiter.Allow() {
		return
	}
	r.refresh(ctx, session, areaID, lay)
}

func (r *Refresher) refresh(ctx context.Context, session uint64, areaID int64, lay *layout.Layout) {
	records, err := r.client.GetOccupancySnapshot(ctx, areaID)
	if err != nil {
		log.Printf("refresh: failed to fetch occupancy for area %d: %v", areaID, err)
		return
	}
	caps, err := r.client.GetCapacitySnapshot(ctx, areaID)
	if err != nil {
		log.Printf("refresh: failed to fetch capacity for area %d: %v", areaID, err)
		return
	}

	// A session opened after this fetch started owns the view now.
	r.mu.Lock()
	live := r.session == session
	r.mu.Unlock()
	if !live {
		return
	}

	snap := reconcile.BuildSnapshot(records, caps)
	view := View{
		AreaID:  areaID,
		Layout:  lay,
		Regions: reconcile.Merge(lay.Regions, snap, layout.IsDefaultPattern(lay.Viewport)),
	}
	if r.onUpdate != nil {
		r.onUpdate(view)
	}
}
