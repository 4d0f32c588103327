package clients

import (
	"context"

	"github.com/hadeslabs/paygate/types"
)

// Ledger is the external transaction log queried during payment
// verification. It is the only untrusted collaborator in the system.
type Ledger interface {
	// GetTransaction returns the confirmed transaction for a signature.
	// (nil, nil) means the ledger has not seen the transaction yet, which
	// callers must treat as retryable rather than terminal.
	GetTransaction(ctx context.Context, signature string) (*types.LedgerTransaction, error)
	Close()
}
