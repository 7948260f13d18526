package workbook

// Operation kinds recognized by the applier.
const (
	OpSetCell      = "setCell"
	OpInsertRowCol = "insertRowCol"
	OpDeleteRowCol = "deleteRowCol"
	OpAddSheet     = "addSheet"
	OpDeleteSheet  = "deleteSheet"
	OpRenameSheet  = "renameSheet"
	OpReorderSheet = "reorderSheet"
)

// Axis values for the structural operations.
const (
	AxisRow    = "row"
	AxisColumn = "column"
)

// Operation is one atomic document change, tagged by Op. Which of the
// remaining fields are meaningful depends on the kind:
//
//	setCell       sheetId, r, c, v (nil v clears the cell)
//	insertRowCol  sheetId, axis, index, count (count defaults to 1)
//	deleteRowCol  sheetId, axis, index, count
//	addSheet      optional sheet payload and/or name
//	deleteSheet   sheetId
//	renameSheet   sheetId, name
//	reorderSheet  sheetId, order
type Operation struct {
	Op      string     `json:"op"`
	SheetID string     `json:"sheetId,omitempty"`
	R       *int       `json:"r,omitempty"`
	C       *int       `json:"c,omitempty"`
	V       *CellValue `json:"v,omitempty"`
	Axis    string     `json:"axis,omitempty"`
	Index   *int       `json:"index,omitempty"`
	Count   int        `json:"count,omitempty"`
	Name    string     `json:"name,omitempty"`
	Order   *int       `json:"order,omitempty"`
	Sheet   *Sheet     `json:"sheet,omitempty"`
}
