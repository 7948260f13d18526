package ports

import (
	"context"

	"sheethub/domain/workbook"
)

// DocumentStore is the persistence port for session sheet collections.
// Every method is scoped to a single share code: one code's data is never
// observed or affected through another's.
type DocumentStore interface {
	// GetSheets loads the full sheet collection for a share code. A code
	// with no stored session yields an empty collection, not an error;
	// callers distinguish "no session" from "empty session" through the
	// session creation API, not through this adapter.
	GetSheets(ctx context.Context, shareCode string) ([]workbook.Sheet, error)

	// ReplaceSheets atomically replaces the stored collection for a share
	// code with the given one.
	ReplaceSheets(ctx context.Context, shareCode string, sheets []workbook.Sheet) error

	// CreateSession stores the initial collection for a new share code.
	CreateSession(ctx context.Context, shareCode string, sheets []workbook.Sheet) error

	// DeleteSession removes everything stored under a share code.
	DeleteSession(ctx context.Context, shareCode string) error

	// Close releases any underlying resources.
	Close() error
}
