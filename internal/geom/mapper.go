package geom

// Viewport is a layout's declared internal coordinate frame, independent of
// how many pixels it is drawn into.
type Viewport struct {
	OriginX float64
	OriginY float64
	Width   float64
	Height  float64
}

// RenderFrame is the actual pixel box a layout is drawn into. It may change
// between renders (orientation change, window resize).
type RenderFrame struct {
	Width  float64
	Height float64
}

// FitTransform is the affine transform placing a viewport inside a render
// frame: uniform scale to fit, preserving aspect ratio, centered with
// letterbox offsets on the unconstrained axis.
type FitTransform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit computes the scale-to-fit transform for drawing vp inside frame.
// A degenerate viewport or frame yields the identity transform.
func Fit(vp Viewport, frame RenderFrame) FitTransform {
	if vp.Width <= 0 || vp.Height <= 0 || frame.Width <= 0 || frame.Height <= 0 {
		return FitTransform{Scale: 1}
	}

	viewportAspect := vp.Width / vp.Height
	frameAspect := frame.Width / frame.Height

	var t FitTransform
	if viewportAspect > frameAspect {
		// Width-constrained: the layout spans the full frame width and is
		// centered vertically.
		t.Scale = frame.Width / vp.Width
		rendered := vp.Height * t.Scale
		t.OffsetY = (frame.Height - rendered) / 2
	} else {
		t.Scale = frame.Height / vp.Height
		rendered := vp.Width * t.Scale
		t.OffsetX = (frame.Width - rendered) / 2
	}
	return t
}

// ToRenderSpace maps a box in the viewport's native coordinates to pixel
// coordinates inside the render frame.
func ToRenderSpace(b Box, vp Viewport, frame RenderFrame) Box {
	t := Fit(vp, frame)
	return Box{
		X:      (b.X-vp.OriginX)*t.Scale + t.OffsetX,
		Y:      (b.Y-vp.OriginY)*t.Scale + t.OffsetY,
		Width:  b.Width * t.Scale,
		Height: b.Height * t.Scale,
	}
}

// ToNativeSpace maps a pixel point inside the render frame back to the
// viewport's native coordinates. It is the exact algebraic inverse of
// ToRenderSpace, which hit testing depends on.
func ToNativeSpace(p Point, vp Viewport, frame RenderFrame) Point {
	t := Fit(vp, frame)
	return Point{
		X: (p.X-t.OffsetX)/t.Scale + vp.OriginX,
		Y: (p.Y-t.OffsetY)/t.Scale + vp.OriginY,
	}
}
