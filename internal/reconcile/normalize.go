package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// CapacityTBD is the sentinel meaning "donor capacity not yet assessed".
const CapacityTBD = "TBD"

// capacitySynonyms are values treated as equivalent to "to be determined",
// compared case-insensitively after trimming.
var capacitySynonyms = map[string]bool{
	"tbd":                     true,
	"to be determined":        true,
	"to be determined (tbd)":  true,
	"tbd (to be determined)":  true,
	"unknown":                 true,
}

// cleanCell trims whitespace and collapses the "nan" placeholder that numeric
// readers emit for missing cells down to the empty string.
func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// NormalizeCapacity maps blank values and any recognized "to be determined"
// synonym to the CapacityTBD sentinel; anything else is stored trimmed.
func NormalizeCapacity(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || capacitySynonyms[strings.ToLower(v)] {
		return CapacityTBD
	}
	return v
}

// normalizeExternalID coerces numeric identifiers to their integer textual
// form. Spreadsheet readers render ID columns as floats, so "1234.0" must
// store as "1234". Non-numeric values are stored trimmed as-is.
func normalizeExternalID(v string) string {
	v = strings.TrimSpace(v)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	if f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return v
	}
	return strconv.FormatInt(int64(f), 10)
}
