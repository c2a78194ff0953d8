package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Catalog columns (piezas table). Names follow the normalized spreadsheet headers.
const (
	ColType             = "TIPO"
	ColManufacturer     = "FABRICANTE"
	ColHead             = "CABEZA"
	ColBody             = "CUERPO"
	ColSection          = "TRAMO"
	ColPartDivision     = "PARTE_DIVISION"
	ColQuantityPerTower = "CANTIDAD_X_TORRE"
	ColUnitWeight       = "PESO_UNITARIO"
)

// Derived takeoff columns, added to every calculated row.
const (
	ColOriginalQuantity   = "CANTIDAD_ORIGINAL"
	ColCalculatedQuantity = "CANTIDAD_CALCULADA"
	ColTotalWeight        = "PESO_TOTAL"
)

// Piece is one catalog row. Fields holds every column verbatim; Columns keeps the
// order the store returned them in (used for exports).
type Piece struct {
	Columns []string
	Fields  map[string]any
}

// NewPiece pairs column names with a scanned row.
func NewPiece(columns []string, values []any) Piece {
	p := Piece{
		Columns: make([]string, len(columns)),
		Fields:  make(map[string]any, len(columns)),
	}
	copy(p.Columns, columns)
	for i, c := range columns {
		if i < len(values) {
			p.Fields[c] = values[i]
		} else {
			p.Fields[c] = nil
		}
	}
	return p
}

// PieceFromMap builds a piece whose column order is alphabetical.
func PieceFromMap(fields map[string]any) Piece {
	cols := make([]string, 0, len(fields))
	for k := range fields {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = fields[c]
	}
	return NewPiece(cols, values)
}

func (p Piece) Value(col string) any {
	if p.Fields == nil {
		return nil
	}
	return p.Fields[col]
}

// Text returns the column rendered as a string ("" for missing/NULL).
func (p Piece) Text(col string) string {
	return ToText(p.Value(col))
}

func (p Piece) Type() string         { return p.Text(ColType) }
func (p Piece) Manufacturer() string { return p.Text(ColManufacturer) }
func (p Piece) Head() string         { return p.Text(ColHead) }
func (p Piece) Body() string         { return p.Text(ColBody) }
func (p Piece) Section() string      { return p.Text(ColSection) }
func (p Piece) PartDivision() string { return p.Text(ColPartDivision) }

func (p Piece) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Fields)
}

// NormalizeName trims and upper-cases a part or division name for matching.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ToText renders a catalog or request value as text. nil becomes "".
func ToText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
