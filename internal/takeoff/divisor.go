package takeoff

import "tower-takeoff/internal/domain"

// Body faces and combined designators that the catalog lists once for a pair.
var halfParts = map[string]struct{}{
	"BGDA":     {},
	"BSUP":     {},
	"BMED":     {},
	"BINF":     {},
	"BDER":     {},
	"BIZQ":     {},
	"BSUP/MED": {},
}

// Leg-height bands, listed once for the four legs. "PATA 3" and "PATA 3.0" are distinct literals.
var quarterParts = map[string]struct{}{
	"PATA 0":   {},
	"PATA 0.0": {},
	"PATA 1.5": {},
	"PATA 3":   {},
	"PATA 3.0": {},
	"PATA 4.5": {},
	"PATA 6":   {},
	"PATA 6.0": {},
	"PATA 7.5": {},
	"PATA 9":   {},
	"PATA 9.0": {},
}

// DivisorFor returns 2, 4 or 1 for a part division name. The lookup is an exact
// match after trimming and upper-casing; unknown names are not split.
func DivisorFor(name string) int {
	n := domain.NormalizeName(name)
	if _, ok := halfParts[n]; ok {
		return 2
	}
	if _, ok := quarterParts[n]; ok {
		return 4
	}
	return 1
}
