package repository

import (
	"context"

	"tower-takeoff/internal/domain"
)

// CatalogRepository is the piece catalog the calculator reads from.
// Failures of the underlying store are reported wrapped in domain.ErrStoreUnavailable.
type CatalogRepository interface {
	// QueryPieces returns every row matching all active filters.
	QueryPieces(ctx context.Context, filters domain.Filters) ([]domain.Piece, error)
	// SearchPieces is QueryPieces capped at limit rows (limit <= 0 means no cap).
	SearchPieces(ctx context.Context, filters domain.Filters, limit int) ([]domain.Piece, error)
	// DistinctValues lists the sorted, trimmed, non-blank values of field among rows matching others.
	DistinctValues(ctx context.Context, field string, others domain.Filters) ([]string, error)
}
