package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	testCases := []struct {
		name     string
		viewport Viewport
		frame    RenderFrame
		expected FitTransform
	}{
		{
			name:     "Tall viewport in square frame is height-constrained",
			viewport: Viewport{Width: 100, Height: 200},
			frame:    RenderFrame{Width: 400, Height: 400},
			expected: FitTransform{Scale: 2, OffsetX: 100, OffsetY: 0},
		},
		{
			name:     "Wide viewport in square frame is width-constrained",
			viewport: Viewport{Width: 200, Height: 100},
			frame:    RenderFrame{Width: 400, Height: 400},
			expected: FitTransform{Scale: 2, OffsetX: 0, OffsetY: 100},
		},
		{
			name:     "Matching aspect ratios need no letterbox",
			viewport: Viewport{Width: 100, Height: 100},
			frame:    RenderFrame{Width: 250, Height: 250},
			expected: FitTransform{Scale: 2.5},
		},
		{
			name:     "Degenerate viewport yields identity",
			viewport: Viewport{},
			frame:    RenderFrame{Width: 400, Height: 400},
			expected: FitTransform{Scale: 1},
		},
		{
			name:     "Degenerate frame yields identity",
			viewport: Viewport{Width: 100, Height: 100},
			frame:    RenderFrame{},
			expected: FitTransform{Scale: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Fit(tc.viewport, tc.frame))
		})
	}
}

func TestToRenderSpace(t *testing.T) {
	vp := Viewport{Width: 276, Height: 322}
	frame := RenderFrame{Width: 552, Height: 800}

	// Width-constrained: scale 2, vertical letterbox of (800-644)/2 = 78.
	got := ToRenderSpace(Box{X: 10, Y: 10, Width: 40, Height: 30}, vp, frame)
	assert.InDelta(t, 20, got.X, 1e-9)
	assert.InDelta(t, 98, got.Y, 1e-9)
	assert.InDelta(t, 80, got.Width, 1e-9)
	assert.InDelta(t, 60, got.Height, 1e-9)
}

func TestToNativeSpace_InvertsToRenderSpace(t *testing.T) {
	viewports := []Viewport{
		{Width: 276, Height: 322},
		{OriginX: -10, OriginY: 5, Width: 500, Height: 200},
	}
	frames := []RenderFrame{
		{Width: 360, Height: 640},
		{Width: 1024, Height: 768},
	}
	points := []Point{
		{X: 0, Y: 0},
		{X: 138, Y: 161},
		{X: 275.5, Y: 321.5},
	}

	for _, vp := range viewports {
		for _, frame := range frames {
			for _, p := range points {
				rendered := ToRenderSpace(Box{X: p.X, Y: p.Y, Width: 1, Height: 1}, vp, frame)
				back := ToNativeSpace(Point{X: rendered.X, Y: rendered.Y}, vp, frame)
				assert.InDelta(t, p.X, back.X, 1e-9)
				assert.InDelta(t, p.Y, back.Y, 1e-9)
			}
		}
	}
}

func TestUnion(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 10, Height: 10}
	b := Box{X: 20, Y: 5, Width: 10, Height: 10}

	assert.Equal(t, Box{X: 0, Y: 0, Width: 30, Height: 15}, Union(a, b))
	assert.Equal(t, a, Union(a, Box{}), "invalid operand is ignored")
	assert.Equal(t, b, Union(Box{}, b), "invalid operand is ignored")
	assert.Equal(t, Box{}, Union(Box{}, Box{}))
}

func TestBoundingBox(t *testing.T) {
	points := []Point{{X: 5, Y: 10}, {X: 45, Y: 10}, {X: 45, Y: 40}, {X: 5, Y: 40}}
	assert.Equal(t, Box{X: 5, Y: 10, Width: 40, Height: 30}, BoundingBox(points))
	assert.Equal(t, Box{}, BoundingBox(nil))
}
