package collab

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheethub/domain/workbook"
	"sheethub/infrastructure/persistence/memory"
	apperrors "sheethub/pkg/errors"
)

func newTestEngine(t *testing.T) (*Engine, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	return NewEngine(store, zap.NewNop()), store
}

func seedSession(t *testing.T, store *memory.DocumentStore, shareCode string) workbook.Sheet {
	t.Helper()
	sheet := workbook.NewDefaultSheet(workbook.DefaultSheetName, 0)
	require.NoError(t, store.CreateSession(context.Background(), shareCode, []workbook.Sheet{sheet}))
	return sheet
}

func TestEngineApplyPersistsResult(t *testing.T) {
	engine, store := newTestEngine(t)
	sheet := seedSession(t, store, "ABC123")
	r, c := 2, 3

	err := engine.Apply(context.Background(), "ABC123", []workbook.Operation{{
		Op: workbook.OpSetCell, SheetID: sheet.ID, R: &r, C: &c,
		V: &workbook.CellValue{V: "hello", M: "hello"},
	}})
	require.NoError(t, err)

	sheets, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	cell := sheets[0].CellAt(2, 3)
	require.NotNil(t, cell)
	assert.Equal(t, "hello", cell.V.V)
}

func TestEngineApplyEmptyBatchIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.NoError(t, engine.Apply(context.Background(), "ABC123", nil))
}

func TestEngineApplyRejectionLeavesStoreUntouched(t *testing.T) {
	engine, store := newTestEngine(t)
	sheet := seedSession(t, store, "ABC123")
	r, c := 0, 0

	err := engine.Apply(context.Background(), "ABC123", []workbook.Operation{
		{Op: workbook.OpSetCell, SheetID: sheet.ID, R: &r, C: &c, V: &workbook.CellValue{V: 1}},
		{Op: workbook.OpSetCell, SheetID: "missing", R: &r, C: &c, V: &workbook.CellValue{V: 2}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	sheets, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, sheets[0].Celldata, 1, "only the seed cell")
	assert.Nil(t, sheets[0].Celldata[0].V)
}

func TestEngineApplySerializesBatchesPerShareCode(t *testing.T) {
	engine, store := newTestEngine(t)
	sheet := seedSession(t, store, "ABC123")

	// Racing insertRow batches each grow the sheet by one row; serialized
	// application means no increment may be lost.
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := 0
			err := engine.Apply(context.Background(), "ABC123", []workbook.Operation{{
				Op: workbook.OpInsertRowCol, SheetID: sheet.ID,
				Axis: workbook.AxisRow, Index: &idx,
			}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sheets, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, workbook.DefaultRows+workers, sheets[0].Row)
}

func TestEngineApplySessionsDoNotInteract(t *testing.T) {
	engine, store := newTestEngine(t)
	a := seedSession(t, store, "ABC123")
	b := seedSession(t, store, "XYZ789")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, c := 0, i
			err := engine.Apply(context.Background(), "ABC123", []workbook.Operation{{
				Op: workbook.OpSetCell, SheetID: a.ID, R: &r, C: &c,
				V: &workbook.CellValue{V: fmt.Sprintf("a%d", i)},
			}})
			assert.NoError(t, err)
		}(i)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, c := 1, i
			err := engine.Apply(context.Background(), "XYZ789", []workbook.Operation{{
				Op: workbook.OpSetCell, SheetID: b.ID, R: &r, C: &c,
				V: &workbook.CellValue{V: fmt.Sprintf("b%d", i)},
			}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sheetsA, err := store.GetSheets(context.Background(), "ABC123")
	require.NoError(t, err)
	sheetsB, err := store.GetSheets(context.Background(), "XYZ789")
	require.NoError(t, err)

	countWrites := func(sheets []workbook.Sheet, wantRow int) int {
		n := 0
		for _, cell := range sheets[0].Celldata {
			if cell.V == nil {
				continue // seed cell
			}
			assert.Equal(t, wantRow, cell.R, "only this session's writes land here")
			n++
		}
		return n
	}
	assert.Equal(t, 5, countWrites(sheetsA, 0))
	assert.Equal(t, 5, countWrites(sheetsB, 1))
}
