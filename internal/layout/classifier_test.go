package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-reservation-backend/internal/geom"
)

func parseOne(t *testing.T, markup string, hints []SectionHint) *Layout {
	t.Helper()
	lay, err := Parse(markup, hints)
	require.NoError(t, err)
	return lay
}

func TestParse_SimpleRectSpot(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<rect id="spot-1" x="10" y="10" width="40" height="30"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	assert.Equal(t, geom.Viewport{Width: 276, Height: 322}, lay.Viewport)
	require.Len(t, lay.Regions, 1)
	r := lay.Regions[0]
	assert.Equal(t, "spot-1", r.ID)
	assert.Equal(t, KindSpot, r.Kind)
	assert.Equal(t, "1", r.SpotNumber)
	assert.Equal(t, geom.Box{X: 10, Y: 10, Width: 40, Height: 30}, r.NativeBox)
}

func TestParse_TranslatedGroupSpot(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g id="FPA-S-004" transform="translate(5, 5)">
			<rect x="0" y="0" width="40" height="30"/>
		</g>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	r := lay.Regions[0]
	assert.Equal(t, "FPA-S-004", r.ID)
	assert.Equal(t, "004", r.SpotNumber)
	assert.Equal(t, "S", r.SectionName)
	assert.Equal(t, geom.Box{X: 5, Y: 5, Width: 40, Height: 30}, r.NativeBox)
}

func TestParse_NestedTranslationsAccumulate(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g id="floor" transform="translate(10, 20)">
			<g id="S-7" transform="translate(5, 5)">
				<rect x="0" y="0" width="40" height="30"/>
			</g>
		</g>
	</svg>`

	lay := parseOne(t, markup, nil)

	r, ok := lay.RegionByID("S-7")
	require.True(t, ok)
	assert.Equal(t, geom.Box{X: 15, Y: 25, Width: 40, Height: 30}, r.NativeBox)
}

func TestParse_RejectsInfrastructure(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g id="roads" class="road">
			<rect id="spot-9" x="10" y="10" width="40" height="30"/>
		</g>
		<rect id="lane-marking-3" x="10" y="50" width="40" height="30"/>
		<rect id="boundary-west" x="0" y="0" width="5" height="322"/>
		<line id="divider-1" x1="0" y1="0" x2="276" y2="0"/>
		<text id="label-A">A</text>
		<g id="element-template"><rect x="0" y="0" width="40" height="30"/></g>
		<rect id="spot-2" x="60" y="10" width="40" height="30"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	assert.Equal(t, "spot-2", lay.Regions[0].ID)
}

func TestParse_RejectsImplausibleShapes(t *testing.T) {
	markup := `<svg viewBox="0 0 1000 1000">
		<rect id="spot-1" x="0" y="0" width="400" height="100"/>
		<rect id="spot-2" x="0" y="200" width="10" height="10"/>
		<rect id="spot-3" x="0" y="300" width="140" height="20"/>
		<rect id="spot-4" x="0" y="400" width="40" height="30"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	// spot-1 is infrastructure-scale, spot-2 too small, spot-3 too elongated.
	require.Len(t, lay.Regions, 1)
	assert.Equal(t, "spot-4", lay.Regions[0].ID)
}

func TestParse_DuplicateIdentityFirstWins(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<rect id="spot-5" x="10" y="10" width="40" height="30"/>
		<rect id="spot-5" x="60" y="10" width="40" height="30"/>
		<rect id="S-5" x="110" y="10" width="40" height="30"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	// The second spot-5 repeats the id; S-5 resolves to the same spot
	// number "5". Both lose to the first occurrence.
	require.Len(t, lay.Regions, 1)
	assert.Equal(t, geom.Box{X: 10, Y: 10, Width: 40, Height: 30}, lay.Regions[0].NativeBox)
}

func TestParse_AttributeSlots(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g data-slot-id="A-12" data-slot-number="12" data-section="A" data-local-slot="3" transform="translate(30, 40)">
			<rect x="30" y="40" width="44" height="26"/>
		</g>
		<g id="bare" data-slot-number="13" transform="translate(90, 40)"></g>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 2)

	r, ok := lay.RegionByID("A-12")
	require.True(t, ok)
	assert.Equal(t, "12", r.SpotNumber)
	assert.Equal(t, "A", r.SectionName)
	assert.Equal(t, "3", r.LocalSlot)
	assert.Equal(t, geom.Box{X: 60, Y: 80, Width: 44, Height: 26}, r.NativeBox)

	// A slot without a rectangle gets the default-sized box at its
	// translation.
	r, ok = lay.RegionByID("bare")
	require.True(t, ok)
	assert.Equal(t, "13", r.SpotNumber)
	assert.Equal(t, geom.Box{X: 90, Y: 40, Width: defaultSlotWidth, Height: defaultSlotHeight}, r.NativeBox)
}

func TestParse_AttributeSlotSpansItsRects(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g data-slot-id="A-1" data-slot-number="1">
			<rect x="10" y="10" width="40" height="26"/>
			<rect x="10" y="40" width="12" height="8"/>
		</g>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	r, ok := lay.RegionByID("A-1")
	require.True(t, ok)
	assert.Equal(t, geom.Box{X: 10, Y: 10, Width: 40, Height: 38}, r.NativeBox,
		"stall outline and number plate are one tappable area")
}

func TestParse_CapacityZoneByID(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<rect id="MC" x="8" y="248" width="120" height="60"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	r := lay.Regions[0]
	assert.Equal(t, KindCapacityZone, r.Kind)
	assert.Equal(t, "MC", r.SectionName)
}

func TestParse_HintedCapacityZones(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g transform="translate(8, 248)">
			<rect x="0" y="0" width="120" height="60"/>
		</g>
	</svg>`
	hints := []SectionHint{
		{SectionName: "MC", Mode: ModeCapacityOnly, GridX: 8, GridY: 248},
		{SectionName: "S", Mode: ModeSlotBased, GridX: 0, GridY: 0},
	}

	lay := parseOne(t, markup, hints)

	require.Len(t, lay.Regions, 1)
	r := lay.Regions[0]
	assert.Equal(t, "section-MC", r.ID)
	assert.Equal(t, KindCapacityZone, r.Kind)
	assert.Equal(t, geom.Box{X: 8, Y: 248, Width: 120, Height: 60}, r.NativeBox)
}

func TestParse_FallbackZonesWithoutHints(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g transform="translate(8, 248)">
			<rect x="0" y="0" width="120" height="60"/>
		</g>
		<g transform="translate(148, 248)">
			<rect x="0" y="0" width="120" height="60"/>
		</g>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 2)
	_, ok := lay.RegionByID("section-MC")
	assert.True(t, ok)
	_, ok = lay.RegionByID("section-BC")
	assert.True(t, ok)
}

func TestParse_PathGeometry(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<path id="spot-3" d="M 10 10 L 50 10 L 50 40 L 10 40 Z"/>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	assert.Equal(t, geom.Box{X: 10, Y: 10, Width: 40, Height: 30}, lay.Regions[0].NativeBox)
}

func TestParse_SynthesizedGroupBox(t *testing.T) {
	markup := `<svg viewBox="0 0 276 322">
		<g id="spot-8" transform="translate(50, 60)"></g>
	</svg>`

	lay := parseOne(t, markup, nil)

	require.Len(t, lay.Regions, 1)
	b := lay.Regions[0].NativeBox
	assert.Equal(t, 50.0, b.X)
	assert.Equal(t, 60.0, b.Y)
	assert.InDelta(t, 27.6, b.Width, 1e-9)
	assert.InDelta(t, 32.2, b.Height, 1e-9)
}

func TestParse_DepthBoundSkipsSubtree(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<svg viewBox="0 0 276 322">`)
	for i := 0; i < 12; i++ {
		b.WriteString(`<g transform="translate(1, 1)">`)
	}
	b.WriteString(`<rect id="spot-99" x="0" y="0" width="40" height="30"/>`)
	for i := 0; i < 12; i++ {
		b.WriteString(`</g>`)
	}
	b.WriteString(`<rect id="spot-1" x="10" y="10" width="40" height="30"/></svg>`)

	lay := parseOne(t, b.String(), nil)

	// The deeply nested spot is skipped with its subtree; the sibling at
	// the top level still parses.
	_, ok := lay.RegionByID("spot-99")
	assert.False(t, ok)
	_, ok = lay.RegionByID("spot-1")
	assert.True(t, ok)
}

func TestParse_EmptyAndMalformedViewBox(t *testing.T) {
	lay := parseOne(t, `<svg viewBox="garbage"></svg>`, nil)
	assert.Equal(t, geom.Viewport{}, lay.Viewport)
	assert.Empty(t, lay.Regions)
}

func TestIsDefaultPattern(t *testing.T) {
	assert.True(t, IsDefaultPattern(geom.Viewport{Width: 276, Height: 322}))
	assert.False(t, IsDefaultPattern(geom.Viewport{Width: 276, Height: 320}))
}
