package clients

import (
	"context"
	"sync"

	"github.com/hadeslabs/paygate/types"
)

// MemoryLedger is an in-process ledger used by demo mode and tests. It
// serves whatever transactions have been recorded into it and reports
// everything else as not yet seen.
type MemoryLedger struct {
	mu  sync.RWMutex
	txs map[string]types.LedgerTransaction
}

var _ Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{txs: make(map[string]types.LedgerTransaction)}
}

// Record makes a transaction visible to subsequent lookups.
func (l *MemoryLedger) Record(tx types.LedgerTransaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs[tx.Signature] = tx
}

func (l *MemoryLedger) GetTransaction(_ context.Context, signature string) (*types.LedgerTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.txs[signature]
	if !ok {
		return nil, nil
	}
	cp := tx
	cp.Transfers = append([]types.Transfer(nil), tx.Transfers...)
	return &cp, nil
}

func (l *MemoryLedger) Close() {}
