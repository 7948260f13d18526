package collab

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sheethub/application/ports"
	"sheethub/domain/workbook"
)

// Engine applies operation batches to the document store. Batches for one
// share code are serialized in arrival order behind a per-code lock;
// batches for different share codes run concurrently with no interaction.
type Engine struct {
	store  ports.DocumentStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store ports.DocumentStore, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(shareCode string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[shareCode]
	if !ok {
		l = &sync.Mutex{}
		e.locks[shareCode] = l
	}
	return l
}

// Apply loads the session, applies the batch and persists the result.
// All-or-nothing: an applier rejection or a storage failure leaves the
// stored collection untouched and is returned to the caller, never
// swallowed.
func (e *Engine) Apply(ctx context.Context, shareCode string, ops []workbook.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	l := e.lockFor(shareCode)
	l.Lock()
	defer l.Unlock()

	sheets, err := e.store.GetSheets(ctx, shareCode)
	if err != nil {
		return fmt.Errorf("load sheets for %s: %w", shareCode, err)
	}

	next, err := workbook.ApplyBatch(sheets, ops)
	if err != nil {
		return err
	}

	if err := e.store.ReplaceSheets(ctx, shareCode, next); err != nil {
		return fmt.Errorf("persist sheets for %s: %w", shareCode, err)
	}

	e.logger.Debug("operation batch applied",
		zap.String("shareCode", shareCode),
		zap.Int("operations", len(ops)),
	)
	return nil
}
