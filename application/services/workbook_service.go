package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sheethub/application/ports"
	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

const shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const shareCodeLength = 6

// NewShareCode returns a random session token: short, opaque, uppercase
// alphanumeric.
func NewShareCode() string {
	buf := make([]byte, shareCodeLength)
	for i := range buf {
		buf[i] = shareCodeAlphabet[rand.Intn(len(shareCodeAlphabet))]
	}
	return string(buf)
}

// WorkbookService provides the session CRUD and import surface around the
// document store. Session destruction is explicit; a session is never
// deleted because its connection count dropped to zero.
type WorkbookService struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewWorkbookService creates a workbook service.
func NewWorkbookService(store ports.DocumentStore, logger *zap.Logger) *WorkbookService {
	return &WorkbookService{store: store, logger: logger}
}

// Create starts a new session under a fresh share code with one default
// sheet and returns the code.
func (s *WorkbookService) Create(ctx context.Context) (string, error) {
	shareCode := NewShareCode()
	sheet := workbook.NewDefaultSheet(workbook.DefaultSheetName, 0)

	if err := s.store.CreateSession(ctx, shareCode, []workbook.Sheet{sheet}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session created", zap.String("shareCode", shareCode))
	return shareCode, nil
}

// Get returns the session's sheets in display order. A share code with no
// stored sheets does not name a session.
func (s *WorkbookService) Get(ctx context.Context, shareCode string) ([]workbook.Sheet, error) {
	sheets, err := s.store.GetSheets(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", shareCode, err)
	}
	if len(sheets) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("workbook %q", shareCode))
	}
	workbook.SortSheets(sheets)
	return sheets, nil
}

// Import replaces an existing session's sheets with the given collection.
// Sheets are normalized: ids assigned where missing, order reindexed by
// position, bounds defaulted, out-of-bounds cells dropped.
func (s *WorkbookService) Import(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	if len(sheets) == 0 {
		return apperrors.NewValidationError("import requires at least one sheet")
	}

	existing, err := s.store.GetSheets(ctx, shareCode)
	if err != nil {
		return fmt.Errorf("load session %s: %w", shareCode, err)
	}
	if len(existing) == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("workbook %q", shareCode))
	}

	seen := make(map[string]bool, len(sheets))
	for i := range sheets {
		if sheets[i].ID == "" {
			sheets[i].ID = uuid.New().String()
		}
		if seen[sheets[i].ID] {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate sheet id %q", sheets[i].ID))
		}
		seen[sheets[i].ID] = true
		sheets[i].Order = i
		if sheets[i].Row <= 0 {
			sheets[i].Row = workbook.DefaultRows
		}
		if sheets[i].Column <= 0 {
			sheets[i].Column = workbook.DefaultColumns
		}
		sheets[i].DropOutOfBounds()
	}

	if err := s.store.ReplaceSheets(ctx, shareCode, sheets); err != nil {
		return fmt.Errorf("replace session %s: %w", shareCode, err)
	}

	s.logger.Info("session imported",
		zap.String("shareCode", shareCode),
		zap.Int("sheets", len(sheets)),
	)
	return nil
}

// Reset reinitializes a session to a single default sheet. Used by the
// legacy init endpoint against the default session.
func (s *WorkbookService) Reset(ctx context.Context, shareCode string) error {
	if err := s.store.DeleteSession(ctx, shareCode); err != nil {
		return fmt.Errorf("reset session %s: %w", shareCode, err)
	}
	sheet := workbook.NewDefaultSheet(workbook.DefaultSheetName, 0)
	if err := s.store.CreateSession(ctx, shareCode, []workbook.Sheet{sheet}); err != nil {
		return fmt.Errorf("reset session %s: %w", shareCode, err)
	}
	return nil
}
