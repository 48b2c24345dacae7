package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const unknownRegion = "ZZ"

// Format renders a normalized number for display. Indonesian numbers use the
// "+62 XXX-XXXX-XXXX" grouping; other numbers use the international format
// from the numbering plan metadata. Input that is not canonical is returned
// unchanged.
func Format(normalized string) string {
	if !IsCanonical(normalized) {
		return normalized
	}

	if rest, ok := strings.CutPrefix(normalized, indonesiaPrefix); ok {
		switch {
		case len(rest) > 7:
			return indonesiaPrefix + " " + rest[:3] + "-" + rest[3:7] + "-" + rest[7:]
		case len(rest) > 3:
			return indonesiaPrefix + " " + rest[:3] + "-" + rest[3:]
		default:
			return indonesiaPrefix + " " + rest
		}
	}

	number, err := phonenumbers.Parse(normalized, unknownRegion)
	if err != nil {
		return normalized
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

// Region returns the ISO 3166 region of a normalized number, or "" when the
// numbering plan cannot place it.
func Region(normalized string) string {
	number, err := phonenumbers.Parse(normalized, unknownRegion)
	if err != nil {
		return ""
	}
	region := phonenumbers.GetRegionCodeForNumber(number)
	if region == unknownRegion {
		return ""
	}
	return region
}

// IsPlausible reports whether the numbering plan considers the number a
// valid assignment. Normalization does not depend on it.
func IsPlausible(normalized string) bool {
	number, err := phonenumbers.Parse(normalized, unknownRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}
