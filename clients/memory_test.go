package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeslabs/paygate/types"
)

func TestMemoryLedger_UnknownSignatureIsNilNil(t *testing.T) {
	ledger := NewMemoryLedger()
	tx, err := ledger.GetTransaction(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestMemoryLedger_RecordedTransactionIsServed(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Record(types.LedgerTransaction{
		Signature: "tx1",
		Transfers: []types.Transfer{{Source: "a", Destination: "b", Lamports: 5}},
	})

	tx, err := ledger.GetTransaction(context.Background(), "tx1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "tx1", tx.Signature)
	require.Len(t, tx.Transfers, 1)

	// Callers get a copy; mutating it does not corrupt the ledger.
	tx.Transfers[0].Lamports = 999
	again, err := ledger.GetTransaction(context.Background(), "tx1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Transfers[0].Lamports)
}
