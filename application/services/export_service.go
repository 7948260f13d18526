package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheethub/application/ports"
	"sheethub/domain/workbook"
	"sheethub/infrastructure/spreadsheet"
	apperrors "sheethub/pkg/errors"
)

// ExportService renders sessions to spreadsheet files on disk and prunes
// stale exports. Files land in Dir and are served statically.
type ExportService struct {
	store  ports.DocumentStore
	dir    string
	logger *zap.Logger
}

// NewExportService creates an export service writing into dir.
func NewExportService(store ports.DocumentStore, dir string, logger *zap.Logger) *ExportService {
	return &ExportService{store: store, dir: dir, logger: logger}
}

// Dir returns the directory exports are written to.
func (s *ExportService) Dir() string {
	return s.dir
}

// Export renders the session to a file named
// "<fileName>-<unix-millis>.<format>" and returns the generated name.
// fileName is a bare name; anything that would resolve outside the export
// directory is rejected.
func (s *ExportService) Export(ctx context.Context, shareCode, fileName, format string) (string, error) {
	if fileName != filepath.Base(fileName) || fileName == "." || fileName == ".." ||
		strings.ContainsAny(fileName, `/\`) {
		return "", apperrors.NewValidationError("file name must not contain path separators")
	}

	sheets, err := s.store.GetSheets(ctx, shareCode)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", shareCode, err)
	}
	if len(sheets) == 0 {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("workbook %q", shareCode))
	}
	workbook.SortSheets(sheets)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.NewInternalError("failed to create export directory").WithCause(err)
	}

	name := fmt.Sprintf("%s-%d.%s", fileName, time.Now().UnixMilli(), format)
	path := filepath.Join(s.dir, name)

	switch format {
	case spreadsheet.FormatXLSX:
		f, err := spreadsheet.EncodeXLSX(sheets)
		if err != nil {
			return "", err
		}
		if err := f.SaveAs(path); err != nil {
			return "", apperrors.NewInternalError("failed to save workbook").WithCause(err)
		}
	case spreadsheet.FormatCSV:
		data, err := spreadsheet.EncodeCSV(sheets)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", apperrors.NewInternalError("failed to save csv").WithCause(err)
		}
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported export format %q", format))
	}

	s.logger.Info("session exported",
		zap.String("shareCode", shareCode),
		zap.String("file", name),
	)
	return name, nil
}

// CleanupLoop deletes exports older than maxAge every interval until ctx
// is done.
func (s *ExportService) CleanupLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupOnce(maxAge)
		}
	}
}

// CleanupOnce removes export files older than maxAge. Failures are logged
// and skipped; a stuck file never stops the sweep.
func (s *ExportService) CleanupOnce(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("export cleanup failed", zap.Error(err))
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to remove stale export",
					zap.String("file", entry.Name()),
					zap.Error(err),
				)
				continue
			}
			s.logger.Info("stale export removed", zap.String("file", entry.Name()))
		}
	}
}
