package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheethub/domain/workbook"
	"sheethub/infrastructure/persistence/memory"
	apperrors "sheethub/pkg/errors"
)

func newExportFixture(t *testing.T) (*ExportService, *memory.DocumentStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := memory.NewDocumentStore()
	return NewExportService(store, dir, zap.NewNop()), store, dir
}

func seedExportSession(t *testing.T, store *memory.DocumentStore, shareCode string) {
	t.Helper()
	sheet := workbook.NewDefaultSheet("Data", 0)
	sheet.Celldata = []workbook.Cell{
		{R: 0, C: 0, V: &workbook.CellValue{V: "hello"}},
		{R: 0, C: 1, V: &workbook.CellValue{V: int64(9)}},
	}
	require.NoError(t, store.CreateSession(context.Background(), shareCode, []workbook.Sheet{sheet}))
}

func TestExportXLSXWritesFile(t *testing.T) {
	svc, store, dir := newExportFixture(t)
	seedExportSession(t, store, "ABC123")

	name, err := svc.Export(context.Background(), "ABC123", "report", "xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "report-"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportCSVWritesContent(t *testing.T) {
	svc, store, dir := newExportFixture(t)
	seedExportSession(t, store, "ABC123")

	name, err := svc.Export(context.Background(), "ABC123", "report", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".csv"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "hello,9,"))
}

func TestExportRejectsFileNameLeavingExportDir(t *testing.T) {
	svc, store, dir := newExportFixture(t)
	seedExportSession(t, store, "ABC123")

	for _, name := range []string{"../escape", "sub/escape", `sub\escape`, "..", "."} {
		_, err := svc.Export(context.Background(), "ABC123", name, "csv")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), name)
	}

	// Nothing may land next to the export dir or inside it.
	parent, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	for _, entry := range parent {
		assert.False(t, strings.HasPrefix(entry.Name(), "escape-"), "file escaped the export dir")
	}
	inside, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, inside)
}

func TestExportUnknownSessionIsNotFound(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	_, err := svc.Export(context.Background(), "NOPE42", "report", "xlsx")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestExportUnsupportedFormatRejected(t *testing.T) {
	svc, store, _ := newExportFixture(t)
	seedExportSession(t, store, "ABC123")

	_, err := svc.Export(context.Background(), "ABC123", "report", "pdf")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestCleanupOnceRemovesOnlyStaleFiles(t *testing.T) {
	svc, _, dir := newExportFixture(t)

	stale := filepath.Join(dir, "old-1.csv")
	fresh := filepath.Join(dir, "new-1.csv")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	svc.CleanupOnce(24 * time.Hour)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanupOnceMissingDirIsQuiet(t *testing.T) {
	store := memory.NewDocumentStore()
	svc := NewExportService(store, filepath.Join(t.TempDir(), "never-created"), zap.NewNop())

	svc.CleanupOnce(24 * time.Hour)
}
