package layout

import "parking-reservation-backend/internal/geom"

// RegionKind distinguishes the two interactive unit types on a layout.
type RegionKind int

const (
	// KindSpot is a single bookable parking stall.
	KindSpot RegionKind = iota
	// KindCapacityZone is a section booked by available count rather than
	// by individual stall.
	KindCapacityZone
)

func (k RegionKind) String() string {
	if k == KindCapacityZone {
		return "capacity_zone"
	}
	return "spot"
}

// Region is one interactive unit extracted from a layout: either a parking
// spot or a capacity zone, with its geometry in the layout's native
// coordinate space. Regions are immutable once produced.
type Region struct {
	ID          string
	Kind        RegionKind
	NativeBox   geom.Box
	SpotNumber  string
	SectionName string
	LocalSlot   string
}

// SectionHint is externally supplied semantics for one named section of a
// layout: its booking mode and the translation of its group in the diagram.
type SectionHint struct {
	SectionName string
	Mode        SectionMode
	GridX       float64
	GridY       float64
}

// SectionMode is how a hinted section is booked.
type SectionMode int

const (
	// ModeSlotBased sections expose individual stalls; their spots are
	// expected from the element scan, so hints of this mode are ignored by
	// the capacity-zone resolution path.
	ModeSlotBased SectionMode = iota
	// ModeCapacityOnly sections are booked by available count.
	ModeCapacityOnly
)

// Layout is the parsed result for one area: the declared viewport and the
// flat region list. A layout with zero regions is valid ("no layout data").
type Layout struct {
	Viewport geom.Viewport
	Regions  []Region
}

// Region lookup helpers used by the booking flow.

// RegionByID returns the region with the given id, if any.
func (l *Layout) RegionByID(id string) (Region, bool) {
	for _, r := range l.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}
