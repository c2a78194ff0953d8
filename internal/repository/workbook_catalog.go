package repository

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"tower-takeoff/internal/domain"
)

// ColSourceSheet records which worksheet a workbook row came from.
const ColSourceSheet = "HOJA_ORIGEN"

var headerReplacer = strings.NewReplacer(
	" ", "_",
	"(", "",
	")", "",
	".", "",
	"Á", "A",
	"É", "E",
	"Í", "I",
	"Ó", "O",
	"Ú", "U",
	"Ñ", "N",
)

// NormalizeColumnName maps a spreadsheet header to a catalog column name:
// "Cantidad x Torre" -> "CANTIDAD_X_TORRE", "Peso (Unitario)" -> "PESO_UNITARIO".
func NormalizeColumnName(h string) string {
	return headerReplacer.Replace(strings.ToUpper(strings.TrimSpace(h)))
}

// LoadWorkbookCatalogFile opens path and reads it with LoadWorkbookCatalog.
func LoadWorkbookCatalogFile(path string) ([]domain.Piece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return LoadWorkbookCatalog(f)
}

// LoadWorkbookCatalog reads every worksheet of an .xlsx catalog. In each sheet the first
// non-empty row is the header; blank header cells drop their column, duplicated headers get
// _1, _2 suffixes, and each row carries its sheet name in HOJA_ORIGEN.
func LoadWorkbookCatalog(r io.Reader) ([]domain.Piece, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer f.Close()

	out := []domain.Piece{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		out = append(out, sheetPieces(sheet, rows)...)
	}
	return out, nil
}

func sheetPieces(sheet string, rows [][]string) []domain.Piece {
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	type column struct {
		idx  int
		name string
	}
	var cols []column
	counts := map[string]int{ColSourceSheet: 0}
	for i, h := range rows[headerIdx] {
		name := NormalizeColumnName(h)
		if name == "" {
			continue
		}
		if n, dup := counts[name]; dup {
			counts[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			counts[name] = 0
		}
		cols = append(cols, column{idx: i, name: name})
	}

	names := make([]string, 0, len(cols)+1)
	names = append(names, ColSourceSheet)
	for _, c := range cols {
		names = append(names, c.name)
	}

	out := []domain.Piece{}
	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}
		values := make([]any, 0, len(names))
		values = append(values, sheet)
		for _, c := range cols {
			if c.idx < len(row) {
				values = append(values, row[c.idx])
			} else {
				values = append(values, nil)
			}
		}
		out = append(out, domain.NewPiece(names, values))
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
