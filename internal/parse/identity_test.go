package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpotID(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected SpotIdentity
		wantErr  bool
	}{
		{
			name:     "Area code pattern",
			raw:      "FPA-S-004",
			expected: SpotIdentity{Number: "004", Section: "S"},
		},
		{
			name:     "Section-dash pattern",
			raw:      "S-1",
			expected: SpotIdentity{Number: "1", Section: "S"},
		},
		{
			name:     "Section without dash",
			raw:      "B12",
			expected: SpotIdentity{Number: "12", Section: "B"},
		},
		{
			name:     "Generic spot prefix",
			raw:      "spot-001",
			expected: SpotIdentity{Number: "001"},
		},
		{
			name:     "Generic parking prefix with underscore",
			raw:      "parking_17",
			expected: SpotIdentity{Number: "17"},
		},
		{
			name:     "Case-insensitive generic prefix",
			raw:      "Spot 42",
			expected: SpotIdentity{Number: "42"},
		},
		{
			name:     "Embedded digit run as last resort",
			raw:      "stall-xyz-23a",
			expected: SpotIdentity{Number: "23"},
		},
		{
			name:    "No digits at all",
			raw:     "entrance",
			wantErr: true,
		},
		{
			name:    "Empty identifier",
			raw:     "  ",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSpotID(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseZoneCode(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
		ok       bool
	}{
		{"MC", "MC", true},
		{"b", "b", true},
		{"ABC", "ABC", true},
		{"section-MC", "MC", true},
		{"section-", "", false},
		{"ABCD", "", false},
		{"A1", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			name, ok := ParseZoneCode(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, name)
		})
	}
}

func TestStripFloorPrefix(t *testing.T) {
	testCases := []struct {
		id       string
		expected string
	}{
		{"F1-spot-12", "spot-12"},
		{"B2-S-4", "S-4"},
		{"3F-spot-8", "spot-8"},
		{"L10-A-1", "A-1"},
		{"spot-12", "spot-12"},     // no floor token
		{"FPA-S-004", "FPA-S-004"}, // head is not a floor token
		{"F1-", "F1-"},             // nothing after the token
		{"F1", "F1"},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripFloorPrefix(tc.id))
		})
	}
}
