package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// DocumentStore persists session sheet collections in SQLite, one row per
// sheet. WAL mode allows concurrent reads while a replace transaction is
// in flight; the per-code atomicity of ReplaceSheets comes from running
// delete-and-insert in a single transaction.
type DocumentStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies
// the schema. Safe to call repeatedly.
func Open(path string) (*DocumentStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DocumentStore{db: db}, nil
}

// GetSheets loads the collection for a share code in display order.
// Unknown codes yield an empty collection.
func (s *DocumentStore) GetSheets(ctx context.Context, shareCode string) ([]workbook.Sheet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM sheets WHERE share_code = ? ORDER BY ord, sheet_id`, shareCode)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to query sheets").WithCause(err)
	}
	defer rows.Close()

	sheets := []workbook.Sheet{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, apperrors.NewDatabaseError("failed to scan sheet row").WithCause(err)
		}
		var sheet workbook.Sheet
		if err := json.Unmarshal([]byte(data), &sheet); err != nil {
			return nil, apperrors.NewDatabaseError("corrupt sheet record").WithCause(err)
		}
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("failed to iterate sheets").WithCause(err)
	}
	return sheets, nil
}

// ReplaceSheets swaps a share code's stored collection in one transaction.
func (s *DocumentStore) ReplaceSheets(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError("failed to begin transaction").WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE share_code = ?`, shareCode); err != nil {
		return apperrors.NewDatabaseError("failed to clear session").WithCause(err)
	}

	for _, sheet := range sheets {
		data, err := json.Marshal(sheet)
		if err != nil {
			return apperrors.NewInternalError("failed to encode sheet").WithCause(err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheets (share_code, sheet_id, ord, data) VALUES (?, ?, ?, ?)`,
			shareCode, sheet.ID, sheet.Order, string(data)); err != nil {
			return apperrors.NewDatabaseError("failed to insert sheet").WithCause(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewDatabaseError("failed to commit session").WithCause(err)
	}
	return nil
}

// CreateSession stores the initial collection for a new share code.
func (s *DocumentStore) CreateSession(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	return s.ReplaceSheets(ctx, shareCode, sheets)
}

// DeleteSession removes every sheet stored under a share code.
func (s *DocumentStore) DeleteSession(ctx context.Context, shareCode string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sheets WHERE share_code = ?`, shareCode); err != nil {
		return apperrors.NewDatabaseError("failed to delete session").WithCause(err)
	}
	return nil
}

// Close closes the database connection.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
