package workbook

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	apperrors "sheethub/pkg/errors"
)

// ApplyBatch applies one batch of operations to a sheet collection and
// returns the updated collection. The batch is all-or-nothing: it runs
// against a deep copy of the input, so on any failure the caller's
// collection is untouched and the error describes the offending
// operation. Replaying a batch is not idempotent (structural operations
// shift indices again), so callers must deliver each batch at most once.
func ApplyBatch(sheets []Sheet, ops []Operation) ([]Sheet, error) {
	var next []Sheet
	if err := deepcopy.Copy(&next, &sheets); err != nil {
		return nil, apperrors.NewInternalError("failed to copy sheet collection").WithCause(err)
	}
	if next == nil {
		next = []Sheet{}
	}

	for i, op := range ops {
		var err error
		switch op.Op {
		case OpSetCell:
			err = applySetCell(next, op)
		case OpInsertRowCol:
			err = applyInsertRowCol(next, op)
		case OpDeleteRowCol:
			err = applyDeleteRowCol(next, op)
		case OpAddSheet:
			next, err = applyAddSheet(next, op)
		case OpDeleteSheet:
			next, err = applyDeleteSheet(next, op)
		case OpRenameSheet:
			err = applyRenameSheet(next, op)
		case OpReorderSheet:
			err = applyReorderSheet(next, op)
		default:
			err = apperrors.NewValidationError(fmt.Sprintf("unknown operation %q", op.Op))
		}
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}

	return next, nil
}

func findSheet(sheets []Sheet, id string) (*Sheet, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("operation is missing sheetId")
	}
	for i := range sheets {
		if sheets[i].ID == id {
			return &sheets[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", id))
}

func applySetCell(sheets []Sheet, op Operation) error {
	sheet, err := findSheet(sheets, op.SheetID)
	if err != nil {
		return err
	}
	if op.R == nil || op.C == nil {
		return apperrors.NewValidationError("setCell requires r and c")
	}
	sheet.SetCell(*op.R, *op.C, op.V)
	return nil
}

func structuralParams(op Operation) (index, count int, err error) {
	if op.Index == nil {
		return 0, 0, apperrors.NewValidationError(op.Op + " requires index")
	}
	count = op.Count
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return 0, 0, apperrors.NewValidationError(op.Op + " count must be positive")
	}
	return *op.Index, count, nil
}

func applyInsertRowCol(sheets []Sheet, op Operation) error {
	sheet, err := findSheet(sheets, op.SheetID)
	if err != nil {
		return err
	}
	index, count, err := structuralParams(op)
	if err != nil {
		return err
	}

	switch op.Axis {
	case AxisRow:
		if index < 0 || index > sheet.Row {
			return apperrors.NewValidationError(fmt.Sprintf("insert index %d outside rows [0, %d]", index, sheet.Row))
		}
		for i := range sheet.Celldata {
			if sheet.Celldata[i].R >= index {
				sheet.Celldata[i].R += count
			}
		}
		sheet.Row += count
	case AxisColumn:
		if index < 0 || index > sheet.Column {
			return apperrors.NewValidationError(fmt.Sprintf("insert index %d outside columns [0, %d]", index, sheet.Column))
		}
		for i := range sheet.Celldata {
			if sheet.Celldata[i].C >= index {
				sheet.Celldata[i].C += count
			}
		}
		sheet.Column += count
	default:
		return apperrors.NewValidationError("axis must be row or column")
	}
	return nil
}

func applyDeleteRowCol(sheets []Sheet, op Operation) error {
	sheet, err := findSheet(sheets, op.SheetID)
	if err != nil {
		return err
	}
	index, count, err := structuralParams(op)
	if err != nil {
		return err
	}

	switch op.Axis {
	case AxisRow:
		if index < 0 || index >= sheet.Row {
			return apperrors.NewValidationError(fmt.Sprintf("delete index %d outside rows [0, %d)", index, sheet.Row))
		}
		if sheet.Row-count < 1 {
			return apperrors.NewValidationError("cannot delete every row of a sheet")
		}
		kept := sheet.Celldata[:0]
		for _, cell := range sheet.Celldata {
			switch {
			case cell.R < index:
				kept = append(kept, cell)
			case cell.R >= index+count:
				cell.R -= count
				kept = append(kept, cell)
			}
		}
		sheet.Celldata = kept
		sheet.Row -= count
	case AxisColumn:
		if index < 0 || index >= sheet.Column {
			return apperrors.NewValidationError(fmt.Sprintf("delete index %d outside columns [0, %d)", index, sheet.Column))
		}
		if sheet.Column-count < 1 {
			return apperrors.NewValidationError("cannot delete every column of a sheet")
		}
		kept := sheet.Celldata[:0]
		for _, cell := range sheet.Celldata {
			switch {
			case cell.C < index:
				kept = append(kept, cell)
			case cell.C >= index+count:
				cell.C -= count
				kept = append(kept, cell)
			}
		}
		sheet.Celldata = kept
		sheet.Column -= count
	default:
		return apperrors.NewValidationError("axis must be row or column")
	}

	// Cells whose other coordinate already sat outside the grid cannot
	// exist here, so the shift above fully restores the bounds invariant.
	sheet.DropOutOfBounds()
	return nil
}

// applyAddSheet appends a sheet with a fresh unique id and the next order
// value. An optional payload supplies name, bounds and cell content.
func applyAddSheet(sheets []Sheet, op Operation) ([]Sheet, error) {
	sheet := NewDefaultSheet(fmt.Sprintf("Sheet%d", len(sheets)+1), NextOrder(sheets))
	if op.Sheet != nil {
		payload := *op.Sheet
		payload.ID = sheet.ID
		payload.Order = sheet.Order
		if payload.Row <= 0 {
			payload.Row = DefaultRows
		}
		if payload.Column <= 0 {
			payload.Column = DefaultColumns
		}
		payload.DropOutOfBounds()
		sheet = payload
	}
	if op.Name != "" {
		sheet.Name = op.Name
	}
	return append(sheets, sheet), nil
}

// applyDeleteSheet removes a sheet by id. Remaining order values are left
// unchanged; gaps are allowed.
func applyDeleteSheet(sheets []Sheet, op Operation) ([]Sheet, error) {
	if _, err := findSheet(sheets, op.SheetID); err != nil {
		return nil, err
	}
	kept := sheets[:0]
	for _, s := range sheets {
		if s.ID != op.SheetID {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

func applyRenameSheet(sheets []Sheet, op Operation) error {
	sheet, err := findSheet(sheets, op.SheetID)
	if err != nil {
		return err
	}
	if op.Name == "" {
		return apperrors.NewValidationError("renameSheet requires name")
	}
	sheet.Name = op.Name
	return nil
}

func applyReorderSheet(sheets []Sheet, op Operation) error {
	sheet, err := findSheet(sheets, op.SheetID)
	if err != nil {
		return err
	}
	if op.Order == nil {
		return apperrors.NewValidationError("reorderSheet requires order")
	}
	sheet.Order = *op.Order
	return nil
}
