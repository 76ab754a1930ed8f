package geom

// Point is a location in some 2D coordinate space.
type Point struct {
	X float64
	Y float64
}

// Box is an axis-aligned rectangle.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Valid reports whether the box has positive extent in both dimensions.
func (b Box) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Translate returns the box shifted by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

// Union returns the smallest box containing both a and b. An invalid operand
// is ignored; two invalid operands yield the zero box.
func Union(a, b Box) Box {
	if !a.Valid() {
		return b
	}
	if !b.Valid() {
		return a
	}
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxY := max(a.Y+a.Height, b.Y+b.Height)
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// BoundingBox returns the smallest box containing every point, or the zero
// box for fewer than two distinct coordinates in either dimension.
func BoundingBox(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
