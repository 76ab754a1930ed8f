package booking

import (
	"context"
	"errors"
	"log"

	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/reconcile"
)

// Step is the reservation workflow's current state.
type Step int

const (
	StepIdle Step = iota
	StepVehicleChosen
	StepAreaChosen
	StepSlotAssigned
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepVehicleChosen:
		return "vehicle_chosen"
	case StepAreaChosen:
		return "area_chosen"
	case StepSlotAssigned:
		return "slot_assigned"
	case StepConfirmed:
		return "confirmed"
	default:
		return "idle"
	}
}

var (
	// ErrBusy is returned while a collaborator call is outstanding; no
	// further transitions are accepted until it resolves.
	ErrBusy = errors.New("booking: a collaborator call is outstanding")
	// ErrSuperseded is returned when a response arrives for a workflow
	// context that has since been replaced.
	ErrSuperseded = errors.New("booking: workflow context superseded")
	// ErrInvalidStep is returned for a transition not legal from the
	// current step.
	ErrInvalidStep = errors.New("booking: transition not allowed from current step")
	// ErrIncompatibleVehicle is returned when the chosen vehicle cannot
	// park in the already-selected region's spot class.
	ErrIncompatibleVehicle = errors.New("booking: vehicle incompatible with selected spot class")
	// ErrNoSpots is returned by AssignSlot when no candidates are
	// available; the workflow stays at AreaChosen.
	ErrNoSpots = errors.New("booking: no spots available")
)

// Orchestrator drives the reservation workflow:
//
//	Idle -> VehicleChosen -> AreaChosen -> SlotAssigned -> Confirmed
//
// All transitions run synchronously; only collaborator calls suspend the
// workflow, and while one is outstanding every other transition is refused.
// Cancellation is by replacement: Reset discards the context and bumps the
// epoch, so a late response for the old context is detected and ignored.
type Orchestrator struct {
	client Client

	// operator deployments (attendant consoles) hold no personal
	// reservations, so the conflict check is skipped for them.
	operator bool

	step  Step
	busy  bool
	epoch uint64

	vehicle *Vehicle
	area    *Area
	region  *reconcile.DecoratedRegion
	spot    *Spot
	section string
}

// NewOrchestrator creates an idle workflow over the given collaborator.
func NewOrchestrator(client Client, operator bool) *Orchestrator {
	return &Orchestrator{client: client, operator: operator}
}

// Step returns the workflow's current step.
func (o *Orchestrator) Step() Step { return o.step }

// AssignedSpot returns the currently assigned spot, if any.
func (o *Orchestrator) AssignedSpot() (Spot, bool) {
	if o.spot == nil {
		return Spot{}, false
	}
	return *o.spot, true
}

// AssignedSection returns the assigned capacity section, if any.
func (o *Orchestrator) AssignedSection() (string, bool) {
	return o.section, o.section != ""
}

// Reset discards all workflow context and returns to Idle. Any outstanding
// collaborator response becomes stale and will be ignored.
func (o *Orchestrator) Reset() {
	o.epoch++
	o.busy = false
	o.step = StepIdle
	o.vehicle = nil
	o.area = nil
	o.region = nil
	o.spot = nil
	o.section = ""
}

// begin marks a collaborator call outstanding and captures the epoch the
// call belongs to.
func (o *Orchestrator) begin() (uint64, error) {
	if o.busy {
		return 0, ErrBusy
	}
	o.busy = true
	return o.epoch, nil
}

// settle clears the busy flag and reports whether the response still
// belongs to the live context.
func (o *Orchestrator) settle(epoch uint64) bool {
	if o.epoch != epoch {
		// The context was replaced while the call was outstanding; the
		// replacement already cleared busy.
		return false
	}
	o.busy = false
	return true
}

// ChooseVehicle selects the vehicle for the reservation. When a region is
// already selected, the vehicle must be able to park in its spot class.
func (o *Orchestrator) ChooseVehicle(v Vehicle) error {
	if o.busy {
		return ErrBusy
	}
	if o.region != nil && o.region.VehicleClass != "" &&
		SpotClassFor(v.Class) != o.region.VehicleClass {
		return ErrIncompatibleVehicle
	}
	o.vehicle = &v
	if o.step == StepIdle {
		o.step = StepVehicleChosen
	}
	return nil
}

// ChooseArea selects the target area. Before any new slot is assigned the
// user must hold no active or reserved booking; the check is skipped only
// for the operator role.
func (o *Orchestrator) ChooseArea(ctx context.Context, area Area) error {
	if o.vehicle == nil {
		return ErrInvalidStep
	}
	if err := o.checkNoConflict(ctx); err != nil {
		return err
	}
	o.area = &area
	o.region = nil
	o.spot = nil
	o.section = ""
	o.step = StepAreaChosen
	return nil
}

// ChooseRegion selects a specific tapped region (spot or capacity zone)
// within an area. The same conflict check as ChooseArea applies.
func (o *Orchestrator) ChooseRegion(ctx context.Context, area Area, region reconcile.DecoratedRegion) error {
	if o.vehicle == nil {
		return ErrInvalidStep
	}
	if err := o.checkNoConflict(ctx); err != nil {
		return err
	}
	o.area = &area
	o.region = &region
	o.spot = nil
	o.section = ""
	o.step = StepAreaChosen
	return nil
}

func (o *Orchestrator) checkNoConflict(ctx context.Context) error {
	if o.operator {
		return nil
	}
	epoch, err := o.begin()
	if err != nil {
		return err
	}
	existing, err := o.client.ListOwnActiveOrReservedBookings(ctx)
	if !o.settle(epoch) {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &ConflictError{Existing: existing[0]}
	}
	return nil
}

// AssignSlot picks the spot (or capacity section) for the reservation.
// Spot flow: available spots for the area, filtered by the vehicle's spot
// class; first-fit, except that a tapped spot region is honored when it is
// among the candidates. Capacity flow: the tapped zone must have available
// capacity. On ErrNoSpots the workflow stays at AreaChosen.
func (o *Orchestrator) AssignSlot(ctx context.Context) error {
	if o.step != StepAreaChosen || o.vehicle == nil || (o.area == nil && o.region == nil) {
		return ErrInvalidStep
	}

	if o.region != nil && o.region.Kind == layout.KindCapacityZone {
		if o.region.AvailableCapacity <= 0 {
			return ErrNoSpots
		}
		o.section = o.region.SectionName
		o.step = StepSlotAssigned
		return nil
	}

	epoch, err := o.begin()
	if err != nil {
		return err
	}
	spot, err := o.firstFit(ctx)
	if !o.settle(epoch) {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	o.spot = spot
	o.step = StepSlotAssigned
	return nil
}

// firstFit queries candidates and picks one. A previously tapped spot
// region wins when it is still among the candidates.
func (o *Orchestrator) firstFit(ctx context.Context) (*Spot, error) {
	spots, err := o.client.ListSpots(ctx, o.area.ID, SpotClassFor(o.vehicle.Class))
	if err != nil {
		return nil, err
	}
	if len(spots) == 0 {
		return nil, ErrNoSpots
	}
	if o.region != nil {
		for _, s := range spots {
			if s.ID == o.region.ID {
				return &s, nil
			}
		}
	}
	return &spots[0], nil
}

// Confirm submits the reservation and classifies the collaborator's answer
// into a typed outcome. On a lost race (spot taken between assignment and
// confirmation) it automatically re-queries once and, when a substitute
// exists, re-enters SlotAssigned with it.
func (o *Orchestrator) Confirm(ctx context.Context) Outcome {
	if o.step != StepSlotAssigned || o.vehicle == nil || o.area == nil {
		return Failure{Err: ErrInvalidStep}
	}

	epoch, err := o.begin()
	if err != nil {
		return Failure{Err: err}
	}

	var res Result
	if o.section != "" {
		res, err = o.client.ReserveCapacityZone(ctx, o.section, o.vehicle.ID, o.area.ID)
	} else {
		res, err = o.client.ReserveSpot(ctx, o.vehicle.ID, o.spot.ID, o.area.ID)
	}
	if !o.settle(epoch) {
		return Failure{Err: ErrSuperseded}
	}
	if err != nil {
		// Transport failure: report and stay at the last stable step.
		return Failure{Err: err}
	}

	switch res.Code {
	case "":
		booked := res
		o.Reset()
		return Ok{Booking: booked}

	case CodeVehicleMismatch:
		spotClass := ""
		if o.spot != nil {
			spotClass = o.spot.VehicleClass
		}
		return Mismatch{VehicleClass: o.vehicle.Class, SpotClass: spotClass, Message: res.Message}

	case CodeInsufficientBalance:
		return InsufficientBalance{Message: res.Message}

	case CodeSpotUnavailable:
		return o.recoverLostRace(ctx)

	default:
		log.Printf("booking: unclassified collaborator code %q: %s", res.Code, res.Message)
		return Failure{Err: errors.New("reservation failed")}
	}
}

// recoverLostRace re-queries available spots for the same area and vehicle
// after the assigned spot was lost. Exactly one attempt: with a new
// candidate the workflow re-enters SlotAssigned, otherwise it falls back to
// AreaChosen.
func (o *Orchestrator) recoverLostRace(ctx context.Context) Outcome {
	if o.section != "" {
		// The zone's last unit was taken while confirming. Individual
		// spots are a different booking flow, so there is nothing to
		// reassign within this one.
		o.section = ""
		o.step = StepAreaChosen
		return NoSpots{}
	}

	epoch, err := o.begin()
	if err != nil {
		return Failure{Err: err}
	}
	// The tapped region lost its race; do not prefer it on requery.
	lost := o.spot
	spots, err := o.client.ListSpots(ctx, o.area.ID, SpotClassFor(o.vehicle.Class))
	if !o.settle(epoch) {
		return Failure{Err: ErrSuperseded}
	}
	if err != nil {
		return Failure{Err: err}
	}

	for _, s := range spots {
		if lost != nil && s.ID == lost.ID {
			continue
		}
		o.spot = &s
		o.step = StepSlotAssigned
		return Reassigned{NewSpot: s}
	}

	o.spot = nil
	o.step = StepAreaChosen
	return NoSpots{}
}
