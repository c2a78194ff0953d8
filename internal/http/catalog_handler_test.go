package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tower-takeoff/internal/domain"
	"tower-takeoff/internal/repository"
	"tower-takeoff/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// brokenRepo fails every lookup the way a dropped database connection would.
type brokenRepo struct{}

var errConnRefused = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (brokenRepo) QueryPieces(context.Context, domain.Filters) ([]domain.Piece, error) {
	return nil, errConnRefused
}

func (brokenRepo) SearchPieces(context.Context, domain.Filters, int) ([]domain.Piece, error) {
	return nil, errConnRefused
}

func (brokenRepo) DistinctValues(context.Context, string, domain.Filters) ([]string, error) {
	return nil, errConnRefused
}

func catalogPieces() []domain.Piece {
	row := func(tipo, division string, qty, weight any) domain.Piece {
		return domain.NewPiece(
			[]string{"TIPO", "FABRICANTE", "CABEZA", "PARTE_DIVISION", "CANTIDAD_X_TORRE", "PESO_UNITARIO", "DESCRIPCION"},
			[]any{tipo, "ACME", "H1", division, qty, weight, "angular " + division},
		)
	}
	return []domain.Piece{
		row("A1", "BSUP", "8", "2.5"),
		row("A1", "PATA 3", 12, 1.0),
		row("A1", "TORNILLO", "10", "0.5"),
		row("A1", "", "50", "1"),
		row("B2", "BSUP", "4", "1"),
	}
}

func newTestRouter(t *testing.T, repo repository.CatalogRepository) http.Handler {
	t.Helper()
	svc := service.NewCatalogService(repo, nil, service.CatalogServiceOptions{SearchLimit: 2}, zap.NewNop())
	r := NewRouter(zap.NewNop())
	r.RegisterCatalogRoutes(NewCatalogHandler(svc, zap.NewNop()))
	return r.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestCalculate_Success(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodPost, "/api/calculate", `{
		"filters": {"tipo": "a1", "fabricante": "", "cabeza": "H1"},
		"parts": [{"part": "BSUP", "quantity": 2}, {"part": " pata 3 ", "quantity": "1"}, {"part": "TORNILLO", "quantity": 3}]
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.EqualValues(t, 3, out["count"])

	results := out["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "BSUP", first["PARTE_DIVISION"])
	assert.Equal(t, "angular BSUP", first["DESCRIPCION"])
	assert.EqualValues(t, 8, first["CANTIDAD_ORIGINAL"])
	assert.EqualValues(t, 8, first["CANTIDAD_CALCULADA"])
	assert.EqualValues(t, 20, first["PESO_TOTAL"])

	totals := out["totals"].(map[string]any)
	assert.EqualValues(t, 41, totals["total_pieces"])
	assert.EqualValues(t, 38, totals["total_weight"])
}

func TestCalculate_NoMatchesIsEmptySuccess(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodPost, "/api/calculate", `{"filters":{"tipo":"Z9"},"parts":[{"part":"BSUP","quantity":1}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["count"])
	assert.Equal(t, []any{}, out["results"])
	assert.Equal(t, map[string]any{"total_pieces": 0.0, "total_weight": 0.0}, out["totals"])
}

func TestCalculate_InvalidInput(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	cases := map[string]string{
		"empty parts":   `{"filters":{"tipo":"A1"},"parts":[]}`,
		"missing parts": `{"filters":{"tipo":"A1"}}`,
		"empty body":    ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w, out := doJSON(t, h, http.MethodPost, "/api/calculate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, msgNoParts, out["message"])
		})
	}
}

func TestCalculate_MalformedBody(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodPost, "/api/calculate", `{"parts": "BSUP"`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgBadBody, out["message"])
}

func TestCalculate_StoreFailureHidesCause(t *testing.T) {
	h := newTestRouter(t, brokenRepo{})

	w, out := doJSON(t, h, http.MethodPost, "/api/calculate", `{"parts":[{"part":"BSUP","quantity":1}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, msgCalculateError, out["message"])
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestCalculate_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	req := httptest.NewRequest(http.MethodGet, "/api/calculate", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestOptions_Cascading(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodGet, "/api/options?TIPO=b2", "")

	require.Equal(t, http.StatusOK, w.Code)
	options := out["options"].(map[string]any)
	assert.Equal(t, []any{"A1", "B2"}, options["TIPO"])
	assert.Equal(t, []any{"BSUP"}, options["PARTE_DIVISION"])
	assert.Equal(t, []any{}, options["CUERPO"])
}

func TestOptions_StoreFailure(t *testing.T) {
	h := newTestRouter(t, brokenRepo{})

	w, out := doJSON(t, h, http.MethodGet, "/api/options", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgOptionsError, out["message"])
}

func TestInvalidateOptions_NoCache(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodDelete, "/api/options/cache", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["removed"])
}

func TestSearch_LimitAndFilters(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodGet, "/api/search?tipo=A1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, out["count"])

	_, out = doJSON(t, h, http.MethodGet, "/api/search?tipo=A1&parte=tornillo", "")
	require.EqualValues(t, 1, out["count"])
	row := out["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "angular TORNILLO", row["DESCRIPCION"])
}

func TestExport_Workbook(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	req := httptest.NewRequest(http.MethodPost, "/api/calculate/export",
		strings.NewReader(`{"filters":{"tipo":"A1"},"parts":[{"part":"BSUP","quantity":2},{"part":"TORNILLO","quantity":3}]}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(takeoffSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"TIPO", "FABRICANTE", "CABEZA", "PARTE_DIVISION", "CANTIDAD_X_TORRE", "PESO_UNITARIO", "DESCRIPCION",
		"CANTIDAD_ORIGINAL", "CANTIDAD_CALCULADA", "PESO_TOTAL"}, rows[0])
	assert.Equal(t, "BSUP", rows[1][3])
	assert.Equal(t, "8", rows[1][8])
	assert.Equal(t, "30", rows[2][8])
	assert.Equal(t, "TOTAL", rows[3][0])
	assert.Equal(t, "38", rows[3][8])
	assert.Equal(t, "35", rows[3][9])
}

func TestExport_EmptyPartsIsJSONError(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(catalogPieces()))

	w, out := doJSON(t, h, http.MethodPost, "/api/calculate/export", `{"parts":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoParts, out["message"])
}

func TestRequestIDPropagates(t *testing.T) {
	h := newTestRouter(t, repository.NewMemoryCatalogRepo(nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, w.Header().Get("X-Request-Id"), 36)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestStaticRoutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>buscador</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calculadora.html"), []byte("<h1>calculadora</h1>"), 0o644))

	r := NewRouter(zap.NewNop())
	r.RegisterStaticRoutes(dir)

	for path, want := range map[string]string{"/": "buscador", "/calculadora": "calculadora"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
