package booking

import "fmt"

// Outcome is the typed result of Confirm. The caller renders any UI it
// wants; the orchestrator never dictates presentation.
type Outcome interface {
	outcome()
}

// Ok is a successful confirmation. The orchestrator has cleared to Idle and
// hands off the booking for downstream session tracking.
type Ok struct {
	Booking Result
}

// Mismatch is a vehicle-class / spot-class mismatch. The workflow context is
// kept; the attempt is not retried.
type Mismatch struct {
	VehicleClass string
	SpotClass    string
	Message      string
}

// InsufficientBalance is terminal for the current attempt.
type InsufficientBalance struct {
	Message string
}

// Reassigned reports a lost race recovered automatically: the previously
// assigned spot was taken, a substitute was found and the workflow is back
// at SlotAssigned with it.
type Reassigned struct {
	NewSpot Spot
}

// NoSpots reports that no candidate spots remain; the workflow fell back to
// AreaChosen.
type NoSpots struct{}

// Failure is a transport or unclassified collaborator error. The state
// machine stays at the last stable step.
type Failure struct {
	Err error
}

func (Ok) outcome()                  {}
func (Mismatch) outcome()            {}
func (InsufficientBalance) outcome() {}
func (Reassigned) outcome()          {}
func (NoSpots) outcome()             {}
func (Failure) outcome()             {}

// ConflictError is returned from area/region selection when the user
// already holds an active or reserved booking. It carries the conflicting
// booking so the caller can show where the user is already parked.
type ConflictError struct {
	Existing Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("existing %s booking %d in area %q", e.Existing.Status, e.Existing.ID, e.Existing.AreaName)
}
