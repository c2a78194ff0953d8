package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"tower-takeoff/internal/domain"
	"tower-takeoff/internal/service"
	"tower-takeoff/internal/takeoff"

	"go.uber.org/zap"
)

// Messages shown by the calculator and search pages.
const (
	msgNoParts        = "Debe seleccionar al menos una parte."
	msgBadBody        = "Solicitud inválida: el cuerpo debe ser JSON."
	msgCalculateError = "Error al calcular materiales."
	msgOptionsError   = "Error interno del servidor al obtener opciones."
	msgSearchError    = "Error interno al buscar datos."
	msgExportError    = "Error al generar el archivo Excel."
	msgCacheError     = "Error al limpiar la caché de opciones."
)

// CatalogService is what the handler needs from the service layer.
type CatalogService interface {
	Calculate(ctx context.Context, req service.CalculateRequest) (*takeoff.Result, error)
	Search(ctx context.Context, f service.SearchFilters) ([]domain.Piece, error)
	Options(ctx context.Context, filters domain.Filters) (map[string][]string, error)
	InvalidateOptions(ctx context.Context) (int, error)
}

type CatalogHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger}
}

// calculateBody is the wire form of a takeoff request. Values are loosely typed so
// that quantities sent as strings or left blank coerce instead of failing the request.
type calculateBody struct {
	Filters map[string]any `json:"filters"`
	Parts   []struct {
		Part     any `json:"part"`
		Quantity any `json:"quantity"`
	} `json:"parts"`
}

func (b calculateBody) request() service.CalculateRequest {
	req := service.CalculateRequest{
		Filters: domain.TowerFilters{
			Tipo:       domain.ToText(b.Filters["tipo"]),
			Fabricante: domain.ToText(b.Filters["fabricante"]),
			Cabeza:     domain.ToText(b.Filters["cabeza"]),
		},
		Parts: make([]domain.PartSelection, 0, len(b.Parts)),
	}
	for _, p := range b.Parts {
		req.Parts = append(req.Parts, domain.PartSelection{
			Part:     domain.ToText(p.Part),
			Quantity: takeoff.ToNumberOrZero(p.Quantity),
		})
	}
	return req
}

type calculateResponse struct {
	Success bool                     `json:"success"`
	Count   int                      `json:"count"`
	Results []domain.CalculatedPiece `json:"results"`
	Totals  domain.Totals            `json:"totals"`
}

// Calculate handles POST /api/calculate.
func (h *CatalogHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runTakeoff(w, r, msgCalculateError)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{
		Success: true,
		Count:   len(res.Pieces),
		Results: res.Pieces,
		Totals:  res.Totals,
	})
}

// Export handles POST /api/calculate/export: the same takeoff, delivered as a workbook.
func (h *CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runTakeoff(w, r, msgCalculateError)
	if !ok {
		return
	}
	data, err := WriteTakeoffWorkbook(res)
	if err != nil {
		h.logger.Error("takeoff export failed", zap.Error(err), zap.String("request_id", RequestIDFromContext(r.Context())))
		writeJSON(w, http.StatusInternalServerError, Fail(msgExportError))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=desglose-torre.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *CatalogHandler) runTakeoff(w http.ResponseWriter, r *http.Request, storeMsg string) (*takeoff.Result, bool) {
	var body calculateBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		h.logger.Debug("malformed takeoff body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, Fail(msgBadBody))
		return nil, false
	}
	res, err := h.svc.Calculate(r.Context(), body.request())
	if err != nil {
		h.writeError(w, r, err, msgNoParts, storeMsg)
		return nil, false
	}
	return res, true
}

// Search handles GET /api/search.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pieces, err := h.svc.Search(r.Context(), service.SearchFilters{
		Tipo:       queryParam(q, "tipo"),
		Fabricante: queryParam(q, "fabricante"),
		Cabeza:     queryParam(q, "cabeza"),
		Parte:      queryParam(q, "parte"),
		Cuerpo:     queryParam(q, "cuerpo"),
		Tramo:      queryParam(q, "tramo"),
	})
	if err != nil {
		h.writeError(w, r, err, msgSearchError, msgSearchError)
		return
	}
	writeJSON(w, http.StatusOK, List(pieces))
}

type optionsResponse struct {
	Success bool                `json:"success"`
	Options map[string][]string `json:"options"`
}

// Options handles GET /api/options. PARTE_DIVISION is listed but never used as a constraint.
func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.Filters{
		domain.Eq(domain.ColType, queryParam(q, domain.ColType)),
		domain.Eq(domain.ColManufacturer, queryParam(q, domain.ColManufacturer)),
		domain.Eq(domain.ColHead, queryParam(q, domain.ColHead)),
		domain.Eq(domain.ColBody, queryParam(q, domain.ColBody)),
		domain.Eq(domain.ColSection, queryParam(q, domain.ColSection)),
	}
	options, err := h.svc.Options(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err, msgOptionsError, msgOptionsError)
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{Success: true, Options: options})
}

type invalidateResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

// InvalidateOptions handles DELETE /api/options/cache.
func (h *CatalogHandler) InvalidateOptions(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.InvalidateOptions(r.Context())
	if err != nil {
		h.logger.Error("option cache invalidation failed", zap.Error(err), zap.String("request_id", RequestIDFromContext(r.Context())))
		writeJSON(w, http.StatusInternalServerError, Fail(msgCacheError))
		return
	}
	writeJSON(w, http.StatusOK, invalidateResponse{Success: true, Removed: n})
}

// writeError maps the error taxonomy onto status codes. Store causes are logged, never returned.
func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error, invalidMsg, storeMsg string) {
	reqID := RequestIDFromContext(r.Context())
	if errors.Is(err, domain.ErrInvalidInput) {
		h.logger.Debug("rejected request", zap.Error(err), zap.String("request_id", reqID))
		writeJSON(w, http.StatusBadRequest, Fail(invalidMsg))
		return
	}
	h.logger.Error("catalog request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
		zap.String("request_id", reqID),
	)
	writeJSON(w, http.StatusInternalServerError, Fail(storeMsg))
}
