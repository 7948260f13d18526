package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheethub/domain/workbook"
)

func openTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestGetSheetsUnknownCodeReturnsEmpty(t *testing.T) {
	store := openTestStore(t)

	sheets, err := store.GetSheets(context.Background(), "NOPE42")
	require.NoError(t, err)
	assert.NotNil(t, sheets)
	assert.Empty(t, sheets)
}

func TestReplaceAndGetRoundtrip(t *testing.T) {
	store := openTestStore(t)
	sheet := workbook.NewDefaultSheet("Demo", 0)
	sheet.Celldata = []workbook.Cell{
		{R: 3, C: 4, V: &workbook.CellValue{V: "hello", M: "hello"}},
		{R: 0, C: 0, V: &workbook.CellValue{V: float64(7)}},
	}

	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123", []workbook.Sheet{sheet}))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sheet.ID, got[0].ID)
	assert.Equal(t, workbook.DefaultRows, got[0].Row)
	require.Len(t, got[0].Celldata, 2)
	assert.Equal(t, "hello", got[0].Celldata[0].V.V)
}

func TestGetSheetsReturnsDisplayOrder(t *testing.T) {
	store := openTestStore(t)
	first := workbook.NewDefaultSheet("First", 0)
	third := workbook.NewDefaultSheet("Third", 5)
	second := workbook.NewDefaultSheet("Second", 2)

	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123",
		[]workbook.Sheet{third, first, second}))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
	assert.Equal(t, "Third", got[2].Name)
}

func TestReplaceSheetsDropsRemovedSheets(t *testing.T) {
	store := openTestStore(t)
	a := workbook.NewDefaultSheet("A", 0)
	b := workbook.NewDefaultSheet("B", 1)
	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123", []workbook.Sheet{a, b}))

	require.NoError(t, store.ReplaceSheets(context.Background(), "ABC123", []workbook.Sheet{b}))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Name)
}

func TestDeleteSession(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.CreateSession(context.Background(), "ABC123",
		[]workbook.Sheet{workbook.NewDefaultSheet("Demo", 0)}))

	require.NoError(t, store.DeleteSession(context.Background(), "ABC123"))

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionsAreIndependent(t *testing.T) {
	store := openTestStore(t)
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

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(path)
	require.NoError(t, err)
	sheet := workbook.NewDefaultSheet("Persistent", 0)
	require.NoError(t, store.CreateSession(context.Background(), "ABC123", []workbook.Sheet{sheet}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Persistent", got[0].Name)
}
