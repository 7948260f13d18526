package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

func smallSheet(name string, rows, cols int, cells ...workbook.Cell) workbook.Sheet {
	return workbook.Sheet{
		ID:       "test-" + name,
		Name:     name,
		Row:      rows,
		Column:   cols,
		Celldata: cells,
	}
}

func TestEncodeCSVRendersFullGrid(t *testing.T) {
	sheet := smallSheet("Data", 2, 3,
		workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "name"}},
		workbook.Cell{R: 0, C: 2, V: &workbook.CellValue{V: float64(1.5)}},
		workbook.Cell{R: 1, C: 1, V: &workbook.CellValue{V: int64(42)}},
	)

	out, err := EncodeCSV([]workbook.Sheet{sheet})
	require.NoError(t, err)

	assert.Equal(t, "name,,1.5\n,42,\n", string(out))
}

func TestEncodeCSVQuotesSpecialCharacters(t *testing.T) {
	sheet := smallSheet("Data", 1, 2,
		workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "a,b"}},
		workbook.Cell{R: 0, C: 1, V: &workbook.CellValue{V: `say "hi"`}},
	)

	out, err := EncodeCSV([]workbook.Sheet{sheet})
	require.NoError(t, err)

	assert.Equal(t, "\"a,b\",\"say \"\"hi\"\"\"\n", string(out))
}

func TestEncodeCSVOnlyFirstSheet(t *testing.T) {
	first := smallSheet("First", 1, 1, workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "one"}})
	second := smallSheet("Second", 1, 1, workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "two"}})

	out, err := EncodeCSV([]workbook.Sheet{first, second})
	require.NoError(t, err)

	assert.Equal(t, "one\n", string(out))
	assert.NotContains(t, string(out), "two")
}

func TestEncodeCSVEmptyCollectionRejected(t *testing.T) {
	_, err := EncodeCSV(nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestEncodeCSVSkipsOutOfBoundsCells(t *testing.T) {
	sheet := smallSheet("Data", 1, 1,
		workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "in"}},
		workbook.Cell{R: 5, C: 5, V: &workbook.CellValue{V: "out"}},
	)

	out, err := EncodeCSV([]workbook.Sheet{sheet})
	require.NoError(t, err)
	assert.Equal(t, "in\n", string(out))
}

func TestXLSXRoundtrip(t *testing.T) {
	sheets := []workbook.Sheet{
		smallSheet("Revenue", 4, 4,
			workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "region"}},
			workbook.Cell{R: 1, C: 0, V: &workbook.CellValue{V: "north"}},
			workbook.Cell{R: 1, C: 1, V: &workbook.CellValue{V: int64(1200)}},
		),
		smallSheet("Notes", 2, 2,
			workbook.Cell{R: 0, C: 0, V: &workbook.CellValue{V: "draft"}},
		),
	}

	f, err := EncodeXLSX(sheets)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	decoded, err := DecodeXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "Revenue", decoded[0].Name)
	assert.Equal(t, 0, decoded[0].Order)
	assert.Equal(t, "Notes", decoded[1].Name)
	assert.Equal(t, 1, decoded[1].Order)
	assert.NotEmpty(t, decoded[0].ID)

	cell := decoded[0].CellAt(1, 1)
	require.NotNil(t, cell)
	assert.Equal(t, int64(1200), cell.V.V)
	assert.Equal(t, "1200", cell.V.M)

	name := decoded[0].CellAt(1, 0)
	require.NotNil(t, name)
	assert.Equal(t, "north", name.V.V)
}

func TestDecodeXLSXGarbageRejected(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("definitely not a zip archive"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestDecodeCSV(t *testing.T) {
	input := "name,qty\nwidget,3\n\"two,words\",1.5\n"

	sheets, err := DecodeCSV(strings.NewReader(input), "Imported")
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	sheet := sheets[0]
	assert.Equal(t, "Imported", sheet.Name)
	assert.Equal(t, workbook.DefaultRows, sheet.Row, "bounds never shrink below defaults")
	assert.Equal(t, workbook.DefaultColumns, sheet.Column)

	require.NotNil(t, sheet.CellAt(0, 0))
	assert.Equal(t, "name", sheet.CellAt(0, 0).V.V)
	assert.Equal(t, int64(3), sheet.CellAt(1, 1).V.V)
	assert.Equal(t, "two,words", sheet.CellAt(2, 0).V.V)
	assert.Equal(t, 1.5, sheet.CellAt(2, 1).V.V)
}

func TestDecodeCSVRaggedRowsAccepted(t *testing.T) {
	input := "a\nb,c,d\n"

	sheets, err := DecodeCSV(strings.NewReader(input), "")
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.NotNil(t, sheets[0].CellAt(1, 2))
}

func TestDecodeCSVGrowsBoundsToContent(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("x\n")
	}

	sheets, err := DecodeCSV(strings.NewReader(sb.String()), "Tall")
	require.NoError(t, err)
	assert.Equal(t, 100, sheets[0].Row)
}
