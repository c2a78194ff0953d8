package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tower-takeoff/internal/domain"
)

// MemoryCatalogRepo: catalog held in memory, used when the DB is disabled or unreachable
// (loaded from the CATALOG_XLSX workbook) and in tests.
type MemoryCatalogRepo struct {
	mu     sync.RWMutex
	pieces []domain.Piece
}

func NewMemoryCatalogRepo(pieces []domain.Piece) *MemoryCatalogRepo {
	r := &MemoryCatalogRepo{}
	r.Replace(pieces)
	return r
}

// Replace swaps the whole catalog.
func (r *MemoryCatalogRepo) Replace(pieces []domain.Piece) {
	cp := make([]domain.Piece, len(pieces))
	copy(cp, pieces)
	r.mu.Lock()
	r.pieces = cp
	r.mu.Unlock()
}

func (r *MemoryCatalogRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pieces)
}

func (r *MemoryCatalogRepo) QueryPieces(ctx context.Context, filters domain.Filters) ([]domain.Piece, error) {
	return r.SearchPieces(ctx, filters, 0)
}

func (r *MemoryCatalogRepo) SearchPieces(_ context.Context, filters domain.Filters, limit int) ([]domain.Piece, error) {
	if err := checkColumns(filters); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Piece{}
	for _, p := range r.pieces {
		if !filters.Matches(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryCatalogRepo) DistinctValues(_ context.Context, field string, others domain.Filters) ([]string, error) {
	if !domain.IsFilterColumn(field) {
		return nil, unknownColumn(field)
	}
	others = others.Without(field)
	if err := checkColumns(others); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range r.pieces {
		if !others.Matches(p) {
			continue
		}
		v := strings.TrimSpace(p.Text(field))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func checkColumns(filters domain.Filters) error {
	for _, f := range filters {
		if !domain.IsFilterColumn(f.Field) {
			return unknownColumn(f.Field)
		}
	}
	return nil
}
