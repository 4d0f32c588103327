package paygate

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeslabs/paygate/clients"
	"github.com/hadeslabs/paygate/config"
	"github.com/hadeslabs/paygate/replay"
	"github.com/hadeslabs/paygate/types"
)

func testConfig() *config.Config {
	return &config.Config{
		PriceLamports:    10_000_000,
		Recipient:        "R",
		SigningSecret:    "e2e-test-secret-0123456789abcdef",
		IntentTTLSeconds: 90,
		SessionTTLMs:     600_000,
		VerifyTimeout:    2 * time.Second,
		DemoMode:         true,
	}
}

func newTestGateway(t *testing.T, opts ...Option) (*PayGate, *clients.MemoryLedger, *clock.Mock) {
	t.Helper()
	ledger := clients.NewMemoryLedger()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))

	opts = append([]Option{WithLedger(ledger), WithClock(clk)}, opts...)
	pg, err := New(testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	return pg, ledger, clk
}

// Full unlock lifecycle: a 12M-lamport payment against a 10M price verifies,
// mints a credential that passes the gate, and stops passing once the
// session TTL elapses.
func TestEndToEnd_PayUnlockExpire(t *testing.T) {
	pg, ledger, clk := newTestGateway(t)
	ctx := context.Background()

	ledger.Record(types.LedgerTransaction{
		Signature: "tx1",
		Transfers: []types.Transfer{{Source: "payer", Destination: "R", Lamports: 12_000_000}},
	})

	res, err := pg.Verify(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusVerified, res.Status)
	assert.Equal(t, int64(12_000_000), res.PaidLamports)
	assert.Equal(t, "tx1", res.TransactionID)

	cred, payload, res, err := pg.Pay(ctx, "tx1")
	require.NoError(t, err)
	require.True(t, res.Verified())
	assert.Equal(t, clk.Now().Add(10*time.Minute).UnixMilli(), payload.ExpiresAt)

	decision := pg.Check(cred.String())
	require.True(t, decision.Allowed)
	assert.Equal(t, types.StateUnlocked, pg.State(cred.String()))

	clk.Add(10*time.Minute + time.Second)
	decision = pg.Check(cred.String())
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(10_000_000), decision.RequiredLamports)
	assert.Equal(t, "R", decision.Recipient)
}

func TestEndToEnd_NotFoundIssuesNothing(t *testing.T) {
	pg, _, _ := newTestGateway(t)

	cred, payload, res, err := pg.Pay(context.Background(), "tx2")
	require.NoError(t, err)
	assert.Equal(t, types.StatusNotFound, res.Status)
	assert.True(t, res.Retryable())
	assert.Nil(t, payload)
	assert.Equal(t, types.Credential{}, cred)
}

func TestIntentThenState(t *testing.T) {
	pg, _, clk := newTestGateway(t)

	it, err := pg.IssueIntent()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), it.RequiredLamports)
	assert.Equal(t, "R", it.Recipient)
	assert.Len(t, it.Reference, 32)
	assert.Equal(t, clk.Now().Add(90*time.Second).UnixMilli(), it.ExpiresAt)

	// No credential at all is READY; a rejected one is PAYMENT_REQUIRED.
	assert.Equal(t, types.StateReady, pg.State(""))
	assert.Equal(t, types.StatePaymentRequired, pg.State("bogus.token"))
}

// Base semantics: without the guard the same transaction mints sessions
// repeatedly.
func TestPay_ReplayAllowedByDefault(t *testing.T) {
	pg, ledger, _ := newTestGateway(t)
	ctx := context.Background()

	ledger.Record(types.LedgerTransaction{
		Signature: "tx1",
		Transfers: []types.Transfer{{Source: "payer", Destination: "R", Lamports: 10_000_000}},
	})

	_, _, _, err := pg.Pay(ctx, "tx1")
	require.NoError(t, err)
	_, _, _, err = pg.Pay(ctx, "tx1")
	require.NoError(t, err)
}

func TestPay_ReplayGuardLimitsToOneSession(t *testing.T) {
	clk := clock.NewMock()
	guard := replay.NewGuard(10*time.Minute, 100, clk)
	pg, ledger, _ := newTestGateway(t, WithReplayGuard(guard))
	ctx := context.Background()

	ledger.Record(types.LedgerTransaction{
		Signature: "tx1",
		Transfers: []types.Transfer{{Source: "payer", Destination: "R", Lamports: 10_000_000}},
	})

	_, _, _, err := pg.Pay(ctx, "tx1")
	require.NoError(t, err)

	_, _, _, err = pg.Pay(ctx, "tx1")
	require.Error(t, err)
	var perr *types.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrReplayedTx, perr.Code)
}

func TestNew_DemoModeGeneratesEphemeralSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SigningSecret = ""

	pg, err := New(cfg, WithLedger(clients.NewMemoryLedger()))
	require.NoError(t, err)
	defer pg.Close()

	_, err = pg.IssueIntent()
	assert.NoError(t, err)
}
