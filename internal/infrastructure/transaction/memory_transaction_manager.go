package transaction

import (
	"context"
	"sync"

	"github.com/sul-dlss/dor-services-app-sub001/internal/application/port/output"
)

// MemoryTransactionManager serializes transactions over the in-memory stores.
// It provides isolation between writers but cannot roll back; stores must
// perform their own compare-and-swap before mutating.
type MemoryTransactionManager struct {
	mu sync.Mutex
}

// NewMemoryTransactionManager creates a new in-memory transaction manager
func NewMemoryTransactionManager() *MemoryTransactionManager {
	return &MemoryTransactionManager{}
}

type memoryTxKey struct{}

// InTransaction runs fn while holding the writer lock
func (m *MemoryTransactionManager) InTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) == m {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memoryTxKey{}, m))
}

// BeginTransaction acquires the writer lock until Commit or Rollback
func (m *MemoryTransactionManager) BeginTransaction(ctx context.Context) (output.Transaction, error) {
	m.mu.Lock()
	return &memoryTransaction{ctx: context.WithValue(ctx, memoryTxKey{}, m), release: m.mu.Unlock}, nil
}

type memoryTransaction struct {
	ctx     context.Context
	once    sync.Once
	release func()
}

func (t *memoryTransaction) Commit() error {
	t.once.Do(t.release)
	return nil
}

func (t *memoryTransaction) Rollback() error {
	t.once.Do(t.release)
	return nil
}

func (t *memoryTransaction) Context() context.Context {
	return t.ctx
}
