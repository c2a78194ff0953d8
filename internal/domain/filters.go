package domain

import "strings"

// FilterColumns are the only catalog columns a filter may constrain.
var FilterColumns = []string{ColType, ColManufacturer, ColHead, ColBody, ColSection, ColPartDivision}

// OptionColumns are the columns whose distinct values feed the filter dropdowns, in display order.
var OptionColumns = []string{ColType, ColManufacturer, ColHead, ColBody, ColPartDivision, ColSection}

// IsFilterColumn reports whether col may appear in a filter or option lookup.
func IsFilterColumn(col string) bool {
	for _, c := range FilterColumns {
		if c == col {
			return true
		}
	}
	return false
}

// Filter is one equality constraint. A nil Value means "not constrained".
type Filter struct {
	Field string
	Value *string
}

// Filters is a conjunction of equality constraints.
type Filters []Filter

// Eq builds a filter; blank values produce an unconstrained filter.
func Eq(field, value string) Filter {
	v := strings.TrimSpace(value)
	if v == "" {
		return Filter{Field: field}
	}
	return Filter{Field: field, Value: &v}
}

// Active returns the constraints that carry a non-blank value, in order.
func (fs Filters) Active() Filters {
	out := make(Filters, 0, len(fs))
	for _, f := range fs {
		if f.Value != nil && strings.TrimSpace(*f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}

// Without drops every constraint on field.
func (fs Filters) Without(field string) Filters {
	out := make(Filters, 0, len(fs))
	for _, f := range fs {
		if f.Field != field {
			out = append(out, f)
		}
	}
	return out
}

// Matches reports whether p satisfies every active constraint (trimmed, case-insensitive).
func (fs Filters) Matches(p Piece) bool {
	for _, f := range fs.Active() {
		if NormalizeName(p.Text(f.Field)) != NormalizeName(*f.Value) {
			return false
		}
	}
	return true
}

// TowerFilters are the tower-level filters accepted by the calculator endpoint.
type TowerFilters struct {
	Tipo       string `json:"tipo" yaml:"tipo"`
	Fabricante string `json:"fabricante" yaml:"fabricante"`
	Cabeza     string `json:"cabeza" yaml:"cabeza"`
}

func (t TowerFilters) Filters() Filters {
	return Filters{
		Eq(ColType, t.Tipo),
		Eq(ColManufacturer, t.Fabricante),
		Eq(ColHead, t.Cabeza),
	}
}
