package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Ordered spot-number patterns, most specific first.
	areaCodeRe = regexp.MustCompile(`^[A-Z]{2,4}-([A-Z])-(\d+)$`)   // FPA-S-004
	sectionRe  = regexp.MustCompile(`^([A-Z])-?(\d{1,4})$`)         // S-1, B12
	genericRe  = regexp.MustCompile(`(?i)^(?:spot|parking)[-_ ]?(\d+)$`) // spot-001
	digitRunRe = regexp.MustCompile(`(\d+)`)

	zoneCodeRe    = regexp.MustCompile(`^[A-Za-z]{1,3}$`)
	floorPrefixRe = regexp.MustCompile(`(?i)^(?:[FLB]\d{1,2}|\d{1,2}F)$`)
)

// SpotIdentity holds the structured identity parsed from an element id.
type SpotIdentity struct {
	Number  string
	Section string
}

// ParseSpotID extracts a spot number (and, when the pattern carries one, a
// section letter) from a raw element identifier. Patterns are tried in a
// fixed order; the first match wins.
func ParseSpotID(raw string) (SpotIdentity, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SpotIdentity{}, fmt.Errorf("empty identifier")
	}

	if m := areaCodeRe.FindStringSubmatch(s); m != nil {
		return SpotIdentity{Number: m[2], Section: m[1]}, nil
	}
	if m := sectionRe.FindStringSubmatch(s); m != nil {
		return SpotIdentity{Number: m[2], Section: m[1]}, nil
	}
	if m := genericRe.FindStringSubmatch(s); m != nil {
		return SpotIdentity{Number: m[1]}, nil
	}
	// Last resort: the first embedded digit run.
	if m := digitRunRe.FindStringSubmatch(s); m != nil {
		return SpotIdentity{Number: m[1]}, nil
	}

	return SpotIdentity{}, fmt.Errorf("unable to parse spot number from %q", raw)
}

// ParseZoneCode reports whether the identifier names a capacity zone: either
// a bare 1-3 letter code, or a "section-" prefixed name. The returned string
// is the zone's section name.
func ParseZoneCode(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if name, ok := strings.CutPrefix(s, "section-"); ok && name != "" {
		return name, true
	}
	if zoneCodeRe.MatchString(s) {
		return s, true
	}
	return "", false
}

// StripFloorPrefix removes a leading floor token ("F1-", "B2-", "3F-") from
// an identifier. Returns the input unchanged when no such token is present.
func StripFloorPrefix(id string) string {
	head, rest, found := strings.Cut(id, "-")
	if !found || rest == "" {
		return id
	}
	if floorPrefixRe.MatchString(head) {
		return rest
	}
	return id
}
