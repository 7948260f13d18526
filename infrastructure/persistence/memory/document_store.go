package memory

import (
	"context"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

// DocumentStore provides an in-memory implementation of
// ports.DocumentStore. Used by tests and as a zero-setup driver for local
// development; everything is lost on restart.
type DocumentStore struct {
	mu       sync.RWMutex
	sessions map[string][]workbook.Sheet
}

// NewDocumentStore creates an empty in-memory store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		sessions: make(map[string][]workbook.Sheet),
	}
}

// GetSheets returns a deep copy of the stored collection. Unknown share
// codes yield an empty collection.
func (s *DocumentStore) GetSheets(ctx context.Context, shareCode string) ([]workbook.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[shareCode]
	if !ok {
		return []workbook.Sheet{}, nil
	}
	return cloneSheets(stored)
}

// ReplaceSheets swaps the stored collection for a share code.
func (s *DocumentStore) ReplaceSheets(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	stored, err := cloneSheets(sheets)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[shareCode] = stored
	return nil
}

// CreateSession stores the initial collection for a new share code.
func (s *DocumentStore) CreateSession(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	return s.ReplaceSheets(ctx, shareCode, sheets)
}

// DeleteSession removes a share code entirely.
func (s *DocumentStore) DeleteSession(ctx context.Context, shareCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, shareCode)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}

// cloneSheets isolates callers from the stored slices so a caller
// mutating its copy cannot corrupt the store.
func cloneSheets(sheets []workbook.Sheet) ([]workbook.Sheet, error) {
	var cloned []workbook.Sheet
	if err := deepcopy.Copy(&cloned, &sheets); err != nil {
		return nil, apperrors.NewInternalError("failed to copy sheet collection").WithCause(err)
	}
	if cloned == nil {
		cloned = []workbook.Sheet{}
	}
	return cloned, nil
}
