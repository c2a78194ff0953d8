package httpapi

import (
	"bytes"
	"fmt"

	"tower-takeoff/internal/domain"
	"tower-takeoff/internal/takeoff"

	"github.com/xuri/excelize/v2"
)

const takeoffSheet = "Desglose"

// TakeoffColumns returns the export header: catalog columns in first-seen order,
// then the derived quantity columns.
func TakeoffColumns(pieces []domain.CalculatedPiece) []string {
	derived := map[string]bool{
		domain.ColOriginalQuantity:   true,
		domain.ColCalculatedQuantity: true,
		domain.ColTotalWeight:        true,
	}
	seen := map[string]bool{}
	var cols []string
	for _, p := range pieces {
		for _, c := range p.Columns {
			if seen[c] || derived[c] {
				continue
			}
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return append(cols, domain.ColOriginalQuantity, domain.ColCalculatedQuantity, domain.ColTotalWeight)
}

// WriteTakeoffWorkbook renders a takeoff as an .xlsx: header row, one row per
// calculated piece, then a bold TOTAL row.
func WriteTakeoffWorkbook(res *takeoff.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(takeoffSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create totals style: %w", err)
	}

	columns := TakeoffColumns(res.Pieces)
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(takeoffSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(takeoffSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	lastCol, _, _ := excelize.SplitCellName(last)
	if err := f.SetColWidth(takeoffSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, p := range res.Pieces {
		fields := p.ToMap()
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = fields[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(takeoffSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalRow := len(res.Pieces) + 2
	totals := map[string]any{
		domain.ColCalculatedQuantity: res.Totals.TotalPieces,
		domain.ColTotalWeight:        res.Totals.TotalWeight,
	}
	for j, c := range columns {
		var value any
		switch {
		case j == 0:
			value = "TOTAL"
		case totals[c] != nil:
			value = totals[c]
		default:
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, totalRow)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(takeoffSheet, cell, value); err != nil {
			return nil, fmt.Errorf("failed to set totals cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(takeoffSheet, cell, cell, totalStyle); err != nil {
			return nil, fmt.Errorf("failed to set totals style: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
