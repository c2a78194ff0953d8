package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tower-takeoff/internal/domain"
	"tower-takeoff/internal/repository"
	"tower-takeoff/internal/store"
	"tower-takeoff/internal/takeoff"

	"go.uber.org/zap"
)

const optionsKeyPrefix = "catalog:options:"

// CatalogService answers catalog queries and material takeoffs.
type CatalogService struct {
	repo        repository.CatalogRepository
	kv          store.KV // optional option-list cache
	cacheTTL    time.Duration
	searchLimit int
	logger      *zap.Logger
}

type CatalogServiceOptions struct {
	CacheTTL    time.Duration
	SearchLimit int
}

func NewCatalogService(repo repository.CatalogRepository, kv store.KV, opts CatalogServiceOptions, logger *zap.Logger) *CatalogService {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		repo:        repo,
		kv:          kv,
		cacheTTL:    opts.CacheTTL,
		searchLimit: opts.SearchLimit,
		logger:      logger,
	}
}

// CalculateRequest is a takeoff request: tower filters plus the selected parts.
type CalculateRequest struct {
	Filters domain.TowerFilters
	Parts   []domain.PartSelection
}

// Calculate fetches the tower's catalog rows and runs the takeoff over them.
func (s *CatalogService) Calculate(ctx context.Context, req CalculateRequest) (*takeoff.Result, error) {
	if len(req.Parts) == 0 {
		return nil, fmt.Errorf("%w: must select at least one part", domain.ErrInvalidInput)
	}

	pieces, err := s.repo.QueryPieces(ctx, req.Filters.Filters())
	if err != nil {
		return nil, asStoreErr("query pieces", err)
	}

	res, err := takeoff.Calculate(pieces, req.Parts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("takeoff calculated",
		zap.Int("catalog_rows", len(pieces)),
		zap.Int("parts", len(req.Parts)),
		zap.Int("result_rows", len(res.Pieces)),
		zap.Float64("total_pieces", res.Totals.TotalPieces),
		zap.Float64("total_weight", res.Totals.TotalWeight),
	)
	return res, nil
}

// SearchFilters is the strict-search form; blank fields are ignored.
type SearchFilters struct {
	Tipo       string
	Fabricante string
	Cabeza     string
	Parte      string
	Cuerpo     string
	Tramo      string
}

func (f SearchFilters) Filters() domain.Filters {
	return domain.Filters{
		domain.Eq(domain.ColType, f.Tipo),
		domain.Eq(domain.ColManufacturer, f.Fabricante),
		domain.Eq(domain.ColHead, f.Cabeza),
		domain.Eq(domain.ColPartDivision, f.Parte),
		domain.Eq(domain.ColBody, f.Cuerpo),
		domain.Eq(domain.ColSection, f.Tramo),
	}
}

// Search returns up to the configured limit of rows matching every filter.
func (s *CatalogService) Search(ctx context.Context, f SearchFilters) ([]domain.Piece, error) {
	pieces, err := s.repo.SearchPieces(ctx, f.Filters(), s.searchLimit)
	if err != nil {
		return nil, asStoreErr("search pieces", err)
	}
	return pieces, nil
}

// Options lists the distinct values of every option column, each constrained by
// the other filters (cascading dropdowns). Results are cached when a KV is configured.
func (s *CatalogService) Options(ctx context.Context, filters domain.Filters) (map[string][]string, error) {
	key := optionsKey(filters)
	if cached, ok := s.cachedOptions(ctx, key); ok {
		return cached, nil
	}

	options := make(map[string][]string, len(domain.OptionColumns))
	for _, field := range domain.OptionColumns {
		values, err := s.repo.DistinctValues(ctx, field, filters.Without(field))
		if err != nil {
			return nil, asStoreErr("options "+field, err)
		}
		options[field] = values
	}

	s.storeOptions(ctx, key, options)
	return options, nil
}

// InvalidateOptions drops every cached option list and returns how many entries were removed.
func (s *CatalogService) InvalidateOptions(ctx context.Context) (int, error) {
	if s.kv == nil {
		return 0, nil
	}
	keys, err := s.kv.ScanKeys(ctx, optionsKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to scan option cache: %w", err)
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("failed to delete option cache: %w", err)
	}
	s.logger.Info("option cache invalidated", zap.Int("keys", len(keys)))
	return len(keys), nil
}

func (s *CatalogService) cachedOptions(ctx context.Context, key string) (map[string][]string, bool) {
	if s.kv == nil {
		return nil, false
	}
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("option cache read failed, querying catalog", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var options map[string][]string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		s.logger.Warn("option cache entry unreadable, querying catalog", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return options, true
}

func (s *CatalogService) storeOptions(ctx context.Context, key string, options map[string][]string) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("option cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// optionsKey is stable for equivalent filter sets: fields in FilterColumns order, values normalized.
func optionsKey(filters domain.Filters) string {
	active := filters.Active()
	parts := make([]string, 0, len(domain.FilterColumns))
	for _, col := range domain.FilterColumns {
		v := ""
		for _, f := range active {
			if f.Field == col {
				v = domain.NormalizeName(*f.Value)
			}
		}
		parts = append(parts, col+"="+v)
	}
	return optionsKeyPrefix + strings.Join(parts, "|")
}

// asStoreErr keeps taxonomy errors as they are and files anything else under ErrStoreUnavailable.
func asStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
