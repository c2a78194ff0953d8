package domain

import "encoding/json"

// PartSelection is one user-chosen structural part and its multiplier.
type PartSelection struct {
	Part     string  `json:"part" yaml:"part"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// CalculatedPiece is a catalog row annotated with its takeoff quantities.
// It serializes flat: every catalog column plus the three derived columns.
type CalculatedPiece struct {
	Piece
	OriginalQuantity   float64
	CalculatedQuantity float64
	TotalWeight        float64
}

func (c CalculatedPiece) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToMap())
}

// ToMap returns a fresh map; the underlying piece is not modified.
func (c CalculatedPiece) ToMap() map[string]any {
	m := make(map[string]any, len(c.Fields)+3)
	for k, v := range c.Fields {
		m[k] = v
	}
	m[ColOriginalQuantity] = c.OriginalQuantity
	m[ColCalculatedQuantity] = c.CalculatedQuantity
	m[ColTotalWeight] = c.TotalWeight
	return m
}

// Totals aggregates a takeoff.
type Totals struct {
	TotalPieces float64 `json:"total_pieces"`
	TotalWeight float64 `json:"total_weight"`
}
