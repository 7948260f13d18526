package workbook

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// Grid dimensions of a freshly created sheet.
const (
	DefaultRows    = 84
	DefaultColumns = 60
)

// DefaultSheetName is the name given to the first sheet of a new session.
const DefaultSheetName = "Demo"

// CellValue is the stored value of one cell: V holds the raw scalar
// (or nil) and M the display string.
type CellValue struct {
	V interface{} `json:"v"`
	M string      `json:"m,omitempty"`
}

// Cell pins a CellValue to a grid coordinate. Celldata is sparse, so a
// coordinate without a Cell is simply empty.
type Cell struct {
	R int        `json:"r"`
	C int        `json:"c"`
	V *CellValue `json:"v"`
}

// Sheet is one spreadsheet tab within a session. Config, Status and the
// pivot table fields are opaque client state and pass through untouched.
type Sheet struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Order        int             `json:"order"`
	Row          int             `json:"row"`
	Column       int             `json:"column"`
	Celldata     []Cell          `json:"celldata"`
	Config       json.RawMessage `json:"config,omitempty"`
	Status       int             `json:"status"`
	IsPivotTable bool            `json:"isPivotTable"`
	PivotTable   json.RawMessage `json:"pivotTable,omitempty"`
}

// NewDefaultSheet creates an empty sheet with the default grid bounds and
// a fresh unique id. The seed cell at (0, 0) carries a null value; clients
// use it as the initial cursor anchor.
func NewDefaultSheet(name string, order int) Sheet {
	return Sheet{
		ID:       uuid.New().String(),
		Name:     name,
		Order:    order,
		Row:      DefaultRows,
		Column:   DefaultColumns,
		Celldata: []Cell{{R: 0, C: 0, V: nil}},
		Config:   json.RawMessage("{}"),
	}
}

// SortSheets orders sheets for display. Order values need not be
// contiguous; the result is a stable total order with id as tiebreak.
func SortSheets(sheets []Sheet) {
	sort.SliceStable(sheets, func(i, j int) bool {
		if sheets[i].Order != sheets[j].Order {
			return sheets[i].Order < sheets[j].Order
		}
		return sheets[i].ID < sheets[j].ID
	})
}

// NextOrder returns the order value an appended sheet should get.
func NextOrder(sheets []Sheet) int {
	next := 0
	for _, s := range sheets {
		if s.Order >= next {
			next = s.Order + 1
		}
	}
	return next
}

// InBounds reports whether (r, c) lies within the declared grid.
func (s *Sheet) InBounds(r, c int) bool {
	return r >= 0 && r < s.Row && c >= 0 && c < s.Column
}

// SetCell stores v at (r, c), replacing any existing cell there. A nil v
// clears the cell. Coordinates outside the grid are dropped silently.
func (s *Sheet) SetCell(r, c int, v *CellValue) {
	if !s.InBounds(r, c) {
		return
	}
	for i := range s.Celldata {
		if s.Celldata[i].R == r && s.Celldata[i].C == c {
			if v == nil {
				s.Celldata = append(s.Celldata[:i], s.Celldata[i+1:]...)
			} else {
				s.Celldata[i].V = v
			}
			return
		}
	}
	if v == nil {
		return
	}
	s.Celldata = append(s.Celldata, Cell{R: r, C: c, V: v})
}

// CellAt returns the cell stored at (r, c), or nil when empty.
func (s *Sheet) CellAt(r, c int) *Cell {
	for i := range s.Celldata {
		if s.Celldata[i].R == r && s.Celldata[i].C == c {
			return &s.Celldata[i]
		}
	}
	return nil
}

// DropOutOfBounds removes every cell outside the declared grid.
func (s *Sheet) DropOutOfBounds() {
	kept := s.Celldata[:0]
	for _, cell := range s.Celldata {
		if s.InBounds(cell.R, cell.C) {
			kept = append(kept, cell)
		}
	}
	s.Celldata = kept
}
