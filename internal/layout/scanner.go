package layout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"parking-reservation-backend/internal/geom"
)

// maxNestingDepth bounds recursion into nested groups. Diagrams legitimately
// nest sections and floors a few levels deep; anything deeper is treated as
// pathological input and skipped wholesale.
const maxNestingDepth = 10

// synthBoxFraction sizes the estimated box for a translated group that
// contains neither a rectangle nor a path, as a fraction of the viewport.
const synthBoxFraction = 0.1

// Transform is the cumulative translation composed from nested group
// transforms.
type Transform struct {
	Dx float64
	Dy float64
}

// node is one markup element with explicit parent links and its accumulated
// transform. The classifier runs as a traversal over these.
type node struct {
	Tag       string
	Attrs     map[string]string
	Parent    *node
	Children  []*node
	Transform Transform
	Depth     int
}

func (n *node) id() string { return n.Attrs["id"] }

// document is the result of one structural scan: the declared viewport and
// every node in document order.
type document struct {
	viewport geom.Viewport
	order    []*node
}

var (
	translateRe = regexp.MustCompile(`translate\(\s*(-?[0-9.]+)(?:[\s,]+(-?[0-9.]+))?\s*\)`)
	numberRe    = regexp.MustCompile(`-?[0-9]*\.?[0-9]+`)
)

// scan tokenizes the raw markup into a node tree. Each element's byte range
// is consumed exactly once: elements nested beyond maxNestingDepth are
// skipped together with their entire subtree.
func scan(markup string) (*document, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false

	doc := &document{}
	var cur *node
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth >= maxNestingDepth {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("failed to skip deep subtree: %w", err)
				}
				continue
			}

			n := &node{
				Tag:    t.Name.Local,
				Attrs:  make(map[string]string, len(t.Attr)),
				Parent: cur,
				Depth:  depth,
			}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if cur != nil {
				n.Transform = cur.Transform
				cur.Children = append(cur.Children, n)
			}
			dx, dy := parseTranslate(n.Attrs["transform"])
			n.Transform.Dx += dx
			n.Transform.Dy += dy

			if n.Tag == "svg" && doc.viewport == (geom.Viewport{}) {
				doc.viewport = parseViewBox(n.Attrs["viewBox"])
			}

			doc.order = append(doc.order, n)
			cur = n
			depth++

		case xml.EndElement:
			if cur != nil {
				cur = cur.Parent
			}
			depth--
		}
	}

	return doc, nil
}

// parseTranslate extracts the (dx, dy) of a translate() transform. A
// single-argument translate moves only along x.
func parseTranslate(transform string) (float64, float64) {
	m := translateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0, 0
	}
	dx, _ := strconv.ParseFloat(m[1], 64)
	var dy float64
	if m[2] != "" {
		dy, _ = strconv.ParseFloat(m[2], 64)
	}
	return dx, dy
}

// parseViewBox parses the declared coordinate frame. A malformed viewBox
// yields the zero viewport, which downstream treats as "no layout data".
func parseViewBox(viewBox string) geom.Viewport {
	fields := strings.Fields(strings.ReplaceAll(viewBox, ",", " "))
	if len(fields) != 4 {
		return geom.Viewport{}
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Viewport{}
		}
		vals[i] = v
	}
	return geom.Viewport{OriginX: vals[0], OriginY: vals[1], Width: vals[2], Height: vals[3]}
}

func (n *node) floatAttr(name string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(n.Attrs[name]), 64)
	return v
}

// rectBox is a rect element's geometry in native coordinates, with the
// accumulated group translation applied.
func rectBox(n *node) geom.Box {
	b := geom.Box{
		X:      n.floatAttr("x"),
		Y:      n.floatAttr("y"),
		Width:  n.floatAttr("width"),
		Height: n.floatAttr("height"),
	}
	return b.Translate(n.Transform.Dx, n.Transform.Dy)
}

// pathBox is the bounding box of a path's coordinate list. Command letters
// are ignored; the numeric tokens are taken pairwise as points.
func pathBox(n *node) geom.Box {
	nums := numberRe.FindAllString(n.Attrs["d"], -1)
	var points []geom.Point
	for i := 0; i+1 < len(nums); i += 2 {
		x, errX := strconv.ParseFloat(nums[i], 64)
		y, errY := strconv.ParseFloat(nums[i+1], 64)
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, geom.Point{X: x, Y: y})
	}
	b := geom.BoundingBox(points)
	return b.Translate(n.Transform.Dx, n.Transform.Dy)
}

// groupBox resolves a group's geometry: the single largest contained
// rectangle, else the first contained path's bounding box, else (for a group
// that itself carries a translation) an estimated box sized as a fraction of
// the viewport. Returns the zero box when nothing can be resolved.
func groupBox(n *node, vp geom.Viewport) geom.Box {
	var best geom.Box
	var bestArea float64
	var firstPath *node

	var walk func(*node)
	walk = func(c *node) {
		for _, child := range c.Children {
			switch child.Tag {
			case "rect":
				b := rectBox(child)
				if area := b.Width * b.Height; b.Valid() && area > bestArea {
					best, bestArea = b, area
				}
			case "path":
				if firstPath == nil {
					firstPath = child
				}
			}
			walk(child)
		}
	}
	walk(n)

	if best.Valid() {
		return best
	}
	if firstPath != nil {
		if b := pathBox(firstPath); b.Valid() {
			return b
		}
	}
	if dx, dy := parseTranslate(n.Attrs["transform"]); dx != 0 || dy != 0 {
		return geom.Box{
			X:      n.Transform.Dx,
			Y:      n.Transform.Dy,
			Width:  vp.Width * synthBoxFraction,
			Height: vp.Height * synthBoxFraction,
		}
	}
	return geom.Box{}
}

// elementBox resolves the native-space geometry for any candidate node.
func elementBox(n *node, vp geom.Viewport) geom.Box {
	switch n.Tag {
	case "rect":
		return rectBox(n)
	case "path":
		return pathBox(n)
	default:
		return groupBox(n, vp)
	}
}
