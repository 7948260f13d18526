// Package spreadsheet converts session sheet collections to and from
// spreadsheet file formats: xlsx through excelize and a delimited-text
// fallback through encoding/csv.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

// Supported export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// EncodeXLSX renders a sheet collection into an xlsx workbook. Cells
// outside a sheet's declared bounds are skipped.
func EncodeXLSX(sheets []workbook.Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	keepDefault := false
	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if name == "Sheet1" {
			keepDefault = true
		}
		if _, err := f.NewSheet(name); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sheet name %q", name)).WithCause(err)
		}
		for _, cell := range sheet.Celldata {
			if cell.V == nil || !sheet.InBounds(cell.R, cell.C) {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(cell.C+1, cell.R+1)
			if err != nil {
				return nil, apperrors.NewInternalError("failed to build cell reference").WithCause(err)
			}
			if err := f.SetCellValue(name, axis, cell.V.V); err != nil {
				return nil, apperrors.NewInternalError("failed to write cell").WithCause(err)
			}
		}
	}

	// excelize seeds new files with "Sheet1"; drop it unless a session
	// sheet claimed the name.
	if len(sheets) > 0 && !keepDefault {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, apperrors.NewInternalError("failed to drop default sheet").WithCause(err)
		}
	}
	return f, nil
}

// EncodeCSV renders the first sheet of a collection as CSV over its full
// declared grid. Quoting follows encoding/csv.
func EncodeCSV(sheets []workbook.Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("nothing to export")
	}
	sheet := sheets[0]

	grid := make([][]string, sheet.Row)
	for r := range grid {
		grid[r] = make([]string, sheet.Column)
	}
	for _, cell := range sheet.Celldata {
		if cell.V == nil || !sheet.InBounds(cell.R, cell.C) {
			continue
		}
		grid[cell.R][cell.C] = scalarString(cell.V.V)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(grid); err != nil {
		return nil, apperrors.NewInternalError("failed to write csv").WithCause(err)
	}
	return buf.Bytes(), nil
}

// DecodeXLSX reads an uploaded workbook into session sheets. Grid bounds
// grow to fit the file's content but never shrink below the defaults.
func DecodeXLSX(r io.Reader) ([]workbook.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("not a readable xlsx file").WithCause(err)
	}
	defer f.Close()

	var sheets []workbook.Sheet
	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("failed to read sheet %q", name)).WithCause(err)
		}
		sheets = append(sheets, sheetFromRows(name, i, rows))
	}
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("workbook has no sheets")
	}
	return sheets, nil
}

// DecodeCSV reads delimited text into a single session sheet.
func DecodeCSV(r io.Reader, name string) ([]workbook.Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError("not a readable csv file").WithCause(err)
	}
	if name == "" {
		name = "Sheet1"
	}
	return []workbook.Sheet{sheetFromRows(name, 0, rows)}, nil
}

func sheetFromRows(name string, order int, rows [][]string) workbook.Sheet {
	sheet := workbook.NewDefaultSheet(name, order)
	// Imported content replaces the seed cell.
	sheet.Celldata = []workbook.Cell{}
	if len(rows) > sheet.Row {
		sheet.Row = len(rows)
	}
	maxCols := 0
	for r, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
		for c, value := range row {
			if value == "" {
				continue
			}
			sheet.Celldata = append(sheet.Celldata, workbook.Cell{
				R: r,
				C: c,
				V: &workbook.CellValue{V: parseScalar(value), M: value},
			})
		}
	}
	if maxCols > sheet.Column {
		sheet.Column = maxCols
	}
	return sheet
}

// parseScalar narrows a file cell to a number when it looks like one.
func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func scalarString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
