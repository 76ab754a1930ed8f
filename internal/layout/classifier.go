package layout

import (
	"log"
	"math"

	"parking-reservation-backend/internal/geom"
)

// Parse turns raw layout markup into the flat region list. Individual
// elements that cannot be classified are skipped, never fatal; a layout that
// yields zero regions is valid output.
func Parse(markup string, hints []SectionHint) (*Layout, error) {
	doc, err := scan(markup)
	if err != nil {
		return nil, err
	}

	lay := &Layout{Viewport: doc.viewport}
	seenIDs := make(map[string]bool)
	seenNumbers := make(map[string]bool)

	for _, n := range doc.order {
		if !isCandidate(n) {
			continue
		}
		c := &candidate{
			node:     n,
			id:       n.id(),
			box:      elementBox(n, doc.viewport),
			viewport: doc.viewport,
		}
		res := classify(c)
		if res.verdict != verdictAccept {
			if res.reason == "no geometry" || res.reason == "zone without geometry" {
				log.Printf("layout: skipping element %q: %s", c.id, res.reason)
			}
			continue
		}
		addRegion(lay, c.region, seenIDs, seenNumbers)
	}

	resolveHintZones(doc, lay, hints, seenIDs)
	return lay, nil
}

// isCandidate selects the nodes of interest: anything with an identifier or
// an explicit slot encoding, except the document root.
func isCandidate(n *node) bool {
	if n.Tag == "svg" {
		return false
	}
	return n.id() != "" || n.Attrs["data-slot-number"] != "" || n.Attrs["data-slot-id"] != ""
}

// addRegion enforces the uniqueness invariants: first occurrence wins for
// both id and resolved spot number.
func addRegion(lay *Layout, r Region, seenIDs, seenNumbers map[string]bool) {
	if seenIDs[r.ID] {
		return
	}
	if r.Kind == KindSpot && r.SpotNumber != "" && seenNumbers[r.SpotNumber] {
		return
	}
	seenIDs[r.ID] = true
	if r.Kind == KindSpot && r.SpotNumber != "" {
		seenNumbers[r.SpotNumber] = true
	}
	lay.Regions = append(lay.Regions, r)
}

// gridTolerance is how far a group's translation may sit from a hint's grid
// position and still be considered the hinted group.
const gridTolerance = 1.0

// resolveHintZones adds capacity-zone regions from externally supplied
// section hints. Only capacity-only hints participate; slot-based sections
// are expected to be covered by the element scan. Without any hints a small
// fixed set of well-known zone translations is probed as a last resort.
func resolveHintZones(doc *document, lay *Layout, hints []SectionHint, seenIDs map[string]bool) {
	if len(hints) == 0 {
		hints = fallbackZones
	}
	for _, h := range hints {
		if h.Mode != ModeCapacityOnly {
			continue
		}
		grp := findGroupAt(doc, h.GridX, h.GridY)
		if grp == nil {
			continue
		}
		box := groupBox(grp, doc.viewport)
		if !box.Valid() {
			continue
		}
		r := Region{
			ID:          "section-" + h.SectionName,
			Kind:        KindCapacityZone,
			NativeBox:   box,
			SectionName: h.SectionName,
		}
		if seenIDs[r.ID] {
			continue
		}
		seenIDs[r.ID] = true
		lay.Regions = append(lay.Regions, r)
	}
}

func findGroupAt(doc *document, x, y float64) *node {
	for _, n := range doc.order {
		if n.Tag != "g" {
			continue
		}
		if math.Abs(n.Transform.Dx-x) <= gridTolerance && math.Abs(n.Transform.Dy-y) <= gridTolerance {
			return n
		}
	}
	return nil
}

// defaultViewport is the coordinate frame of the stock area template. Layouts
// declaring it are "known default" areas: the reconciler may synthesize an
// available status for their spots when the occupancy snapshot has a gap.
var defaultViewport = geom.Viewport{Width: 276, Height: 322}

// IsDefaultPattern reports whether the viewport matches the stock area
// template.
func IsDefaultPattern(vp geom.Viewport) bool {
	return vp == defaultViewport
}
