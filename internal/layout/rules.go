package layout

import (
	"strings"

	"parking-reservation-backend/internal/geom"
	"parking-reservation-backend/internal/parse"
)

// Shape admissibility bounds for a parking stall, in native units. Anything
// past infrastructureSize in either dimension is a road, building or other
// infrastructure, not a stall.
const (
	minSpotSize        = 20.0
	maxSpotSize        = 150.0
	minAspect          = 0.2
	maxAspect          = 5.0
	infrastructureSize = 200.0
)

// Default stall size used for attribute-encoded slots whose enclosing group
// has no rectangle to borrow geometry from.
const (
	defaultSlotWidth  = 50.0
	defaultSlotHeight = 25.0
)

type verdict int

const (
	verdictPass verdict = iota
	verdictReject
	verdictAccept
)

type ruleResult struct {
	verdict verdict
	kind    RegionKind
	reason  string
}

func pass() ruleResult                  { return ruleResult{} }
func reject(reason string) ruleResult   { return ruleResult{verdict: verdictReject, reason: reason} }
func accept(kind RegionKind) ruleResult { return ruleResult{verdict: verdictAccept, kind: kind} }

// candidate carries one element through the rule list. Accepting rules fill
// in the region.
type candidate struct {
	node     *node
	id       string
	box      geom.Box
	viewport geom.Viewport
	region   Region
}

type rule struct {
	name  string
	apply func(c *candidate) ruleResult
}

// classifierRules is the classification policy as data: evaluated in order,
// the first Reject or Accept wins. Exclusion rules run before any identity
// extraction.
var classifierRules = []rule{
	{name: "decorative-shape", apply: rejectDecorativeShape},
	{name: "infrastructure-id", apply: rejectInfrastructureID},
	{name: "road-group", apply: rejectRoadGroup},
	{name: "template-element", apply: rejectTemplateElement},
	{name: "attribute-slot", apply: acceptAttributeSlot},
	{name: "capacity-zone", apply: acceptCapacityZone},
	{name: "pattern-spot", apply: acceptPatternSpot},
}

func classify(c *candidate) ruleResult {
	for _, r := range classifierRules {
		if res := r.apply(c); res.verdict != verdictPass {
			return res
		}
	}
	return reject("no rule matched")
}

var decorativeTags = map[string]bool{
	"line":           true,
	"polyline":       true,
	"circle":         true,
	"ellipse":        true,
	"text":           true,
	"tspan":          true,
	"defs":           true,
	"style":          true,
	"title":          true,
	"desc":           true,
	"use":            true,
	"marker":         true,
	"pattern":        true,
	"linearGradient": true,
	"radialGradient": true,
}

func rejectDecorativeShape(c *candidate) ruleResult {
	if decorativeTags[c.node.Tag] {
		return reject("decorative shape type")
	}
	return pass()
}

var infrastructureTokens = []string{"road", "lane", "boundary", "marking", "label"}

func rejectInfrastructureID(c *candidate) ruleResult {
	id := strings.ToLower(c.id)
	for _, tok := range infrastructureTokens {
		if strings.Contains(id, tok) {
			return reject("infrastructure identifier: " + tok)
		}
	}
	return pass()
}

func rejectRoadGroup(c *candidate) ruleResult {
	for anc := c.node.Parent; anc != nil; anc = anc.Parent {
		marker := strings.ToLower(anc.id() + " " + anc.Attrs["class"])
		if strings.Contains(marker, "road") {
			return reject("inside road group")
		}
	}
	return pass()
}

func rejectTemplateElement(c *candidate) ruleResult {
	if strings.Contains(strings.ToLower(c.id), "element") {
		return reject("template placeholder")
	}
	return pass()
}

// acceptAttributeSlot admits elements carrying the explicit slot encoding.
// Their identity is unambiguous, so pattern extraction and the stall size
// bounds do not apply.
func acceptAttributeSlot(c *candidate) ruleResult {
	number := c.node.Attrs["data-slot-number"]
	slotID := c.node.Attrs["data-slot-id"]
	if number == "" && slotID == "" {
		return pass()
	}

	id := slotID
	if id == "" {
		id = c.id
	}
	if id == "" {
		id = "slot-" + number
	}

	box := slotGeometry(c.node, c.viewport)
	c.region = Region{
		ID:          id,
		Kind:        KindSpot,
		NativeBox:   box,
		SpotNumber:  number,
		SectionName: c.node.Attrs["data-section"],
		LocalSlot:   c.node.Attrs["data-local-slot"],
	}
	return accept(KindSpot)
}

// slotGeometry unions every rectangle within the slot's enclosing group,
// falling back to a default-sized box at the slot's translation. Explicit
// slots may draw their stall as several rects (outline plus number plate).
func slotGeometry(n *node, vp geom.Viewport) geom.Box {
	scope := n
	if n.Tag != "g" && n.Parent != nil {
		scope = n.Parent
	}
	if b := rectUnion(scope); b.Valid() {
		return b
	}
	return geom.Box{
		X:      n.Transform.Dx,
		Y:      n.Transform.Dy,
		Width:  defaultSlotWidth,
		Height: defaultSlotHeight,
	}
}

func rectUnion(n *node) geom.Box {
	var b geom.Box
	for _, child := range n.Children {
		if child.Tag == "rect" {
			b = geom.Union(b, rectBox(child))
		}
		b = geom.Union(b, rectUnion(child))
	}
	return b
}

func acceptCapacityZone(c *candidate) ruleResult {
	name, ok := parse.ParseZoneCode(c.id)
	if !ok {
		return pass()
	}
	if !c.box.Valid() {
		return reject("zone without geometry")
	}
	c.region = Region{
		ID:          c.id,
		Kind:        KindCapacityZone,
		NativeBox:   c.box,
		SectionName: name,
	}
	return accept(KindCapacityZone)
}

func acceptPatternSpot(c *candidate) ruleResult {
	ident, err := parse.ParseSpotID(c.id)
	if err != nil {
		return reject("unrecognized identifier")
	}
	if !c.box.Valid() {
		return reject("no geometry")
	}
	if c.box.Width > infrastructureSize || c.box.Height > infrastructureSize {
		return reject("infrastructure-scale geometry")
	}
	if c.box.Width < minSpotSize || c.box.Width > maxSpotSize ||
		c.box.Height < minSpotSize || c.box.Height > maxSpotSize {
		return reject("implausible stall size")
	}
	if ratio := c.box.Width / c.box.Height; ratio < minAspect || ratio > maxAspect {
		return reject("implausible aspect ratio")
	}

	c.region = Region{
		ID:          c.id,
		Kind:        KindSpot,
		NativeBox:   c.box,
		SpotNumber:  ident.Number,
		SectionName: ident.Section,
	}
	return accept(KindSpot)
}
