package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheethub/domain/workbook"
)

func TestGetSheetsUnknownCodeReturnsEmpty(t *testing.T) {
	store := NewDocumentStore()

	sheets, err := store.GetSheets(context.Background(), "NOPE42")
	require.NoError(t, err)
	assert.NotNil(t, sheets)
	assert.Empty(t, sheets)
}

func TestReplaceAndGetRoundtrip(t *testing.T) {
	store := NewDocumentStore()
	sheet := workbook.NewDefaultSheet("Demo", 0)
	sheet.Celldata = []workbook.Cell{{R: 1, C: 2, V: &workbook.CellValue{V: "x", M: "x"}}}

	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123", []workbook.Sheet{sheet}))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sheet.ID, got[0].ID)
	require.Len(t, got[0].Celldata, 1)
	assert.Equal(t, "x", got[0].Celldata[0].V.V)
}

func TestGetSheetsReturnsIsolatedCopy(t *testing.T) {
	store := NewDocumentStore()
	sheet := workbook.NewDefaultSheet("Demo", 0)
	sheet.Celldata = []workbook.Cell{{R: 0, C: 0, V: &workbook.CellValue{V: "orig"}}}
	require.NoError(t, store.CreateSession(context.Background(), "ABC123", []workbook.Sheet{sheet}))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	got[0].Celldata[0].V.V = "mutated"
	got[0].Name = "mutated"

	again, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "orig", again[0].Celldata[0].V.V)
	assert.Equal(t, "Demo", again[0].Name)
}

func TestReplaceSheetsCopiesInput(t *testing.T) {
	store := NewDocumentStore()
	sheet := workbook.NewDefaultSheet("Demo", 0)
	sheet.Celldata = []workbook.Cell{{R: 0, C: 0, V: &workbook.CellValue{V: "orig"}}}
	sheets := []workbook.Sheet{sheet}

	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123", sheets))
	sheets[0].Celldata[0].V.V = "mutated"

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "orig", got[0].Celldata[0].V.V)
}

func TestDeleteSession(t *testing.T) {
	store := NewDocumentStore()
	require.NoError(t, store.CreateSession(context.Background(), "ABC123",
		[]workbook.Sheet{workbook.NewDefaultSheet("Demo", 0)}))

	require.NoError(t, store.DeleteSession(context.Background(), "ABC123"))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionsAreIndependent(t *testing.T) {
	store := NewDocumentStore()
	require.NoError(t, store.CreateSession(context.Background(), "ABC123",
		[]workbook.Sheet{workbook.NewDefaultSheet("A", 0)}))
	require.NoError(t, store.CreateSession(context.Background(), "XYZ789",
		[]workbook.Sheet{workbook.NewDefaultSheet("X", 0)}))

	require.NoError(t, store.DeleteSession(context.Background(), "ABC123"))

	got, err := store.GetSheets(context.Background(), "XYZ789")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Name)
}
