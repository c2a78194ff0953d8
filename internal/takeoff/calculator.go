package takeoff

import (
	"fmt"

	"tower-takeoff/internal/domain"

	"github.com/shopspring/decimal"
)

// Result is a computed takeoff: the contributing rows in input order plus totals.
type Result struct {
	Pieces []domain.CalculatedPiece
	Totals domain.Totals
}

type selection struct {
	part     string
	quantity decimal.Decimal
}

// Calculate maps catalog rows and part selections to required quantities and weights.
// Rows without a part division, or whose quantity does not come out strictly positive,
// are left out. An empty selection list is rejected with domain.ErrInvalidInput.
func Calculate(pieces []domain.Piece, selections []domain.PartSelection) (*Result, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: must select at least one part", domain.ErrInvalidInput)
	}

	normalized := make([]selection, 0, len(selections))
	for _, s := range selections {
		normalized = append(normalized, selection{
			part:     domain.NormalizeName(s.Part),
			quantity: decimal.NewFromFloat(ToNumberOrZero(s.Quantity)),
		})
	}

	res := &Result{Pieces: []domain.CalculatedPiece{}}
	totalPieces := decimal.Zero
	totalWeight := decimal.Zero

	for _, p := range pieces {
		division := domain.NormalizeName(p.PartDivision())
		if division == "" {
			continue
		}

		perTower := decimal.NewFromFloat(ToNumberOrZero(p.Value(domain.ColQuantityPerTower)))
		qty := rowQuantity(division, perTower, normalized)
		if !qty.IsPositive() {
			continue
		}

		unitWeight := decimal.NewFromFloat(ToNumberOrZero(p.Value(domain.ColUnitWeight)))
		weight := qty.Mul(unitWeight)

		res.Pieces = append(res.Pieces, domain.CalculatedPiece{
			Piece:              p,
			OriginalQuantity:   perTower.InexactFloat64(),
			CalculatedQuantity: qty.InexactFloat64(),
			TotalWeight:        weight.InexactFloat64(),
		})
		totalPieces = totalPieces.Add(qty)
		totalWeight = totalWeight.Add(weight)
	}

	res.Totals = domain.Totals{
		TotalPieces: totalPieces.InexactFloat64(),
		TotalWeight: totalWeight.InexactFloat64(),
	}
	return res, nil
}

// rowQuantity sums (perTower * quantity) / divisor over every selection naming division.
// Duplicate selections each contribute.
func rowQuantity(division string, perTower decimal.Decimal, selections []selection) decimal.Decimal {
	acc := decimal.Zero
	divisor := decimal.NewFromInt(int64(DivisorFor(division)))
	for _, s := range selections {
		if s.part != division {
			continue
		}
		acc = acc.Add(perTower.Mul(s.quantity).Div(divisor))
	}
	return acc
}
