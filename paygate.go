// Package paygate verifies on-ledger payments and gates a protected
// resource behind tamper-evident, expiring session credentials: a client
// requests a quote, pays it on-chain, submits the transaction signature,
// and receives a bearer token that unlocks the resource until it expires.
package paygate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hadeslabs/paygate/clients"
	"github.com/hadeslabs/paygate/config"
	"github.com/hadeslabs/paygate/gate"
	"github.com/hadeslabs/paygate/intent"
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/replay"
	"github.com/hadeslabs/paygate/session"
	"github.com/hadeslabs/paygate/types"
	"github.com/hadeslabs/paygate/verification"
)

// PayGate wires the intent issuer, payment verifier, session issuer, and
// access gate behind one value. All operations are stateless with respect
// to each other; the client-held credential is the only session state.
type PayGate struct {
	cfg      *config.Config
	ledger   clients.Ledger
	verifier *verification.Service
	intents  *intent.Issuer
	codec    *session.Codec
	issuer   *session.Issuer
	gate     *gate.Gate
	guard    *replay.Guard

	log logger.Logger
	rec metrics.Recorder
	clk clock.Clock
}

// New builds a gateway from validated configuration. Missing secret or
// recipient surface here as CONFIG_ERROR; treat that as fatal.
func New(cfg *config.Config, opts ...Option) (*PayGate, error) {
	p := &PayGate{
		cfg: cfg,
		log: logger.NoopLogger{},
		rec: metrics.NoopRecorder{},
		clk: clock.New(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.ledger == nil {
		if cfg.DemoMode {
			p.ledger = clients.NewMemoryLedger()
		} else {
			ledger, err := clients.NewSolanaLedger(cfg.RPCURL)
			if err != nil {
				return nil, err
			}
			p.ledger = ledger
		}
	}

	secret := cfg.SigningSecret
	if secret == "" && cfg.DemoMode {
		// Ephemeral secret: demo sessions do not survive a restart.
		secret = randomSecret()
	}
	codec, err := session.NewCodec(secret, p.clk, p.log)
	if err != nil {
		return nil, err
	}
	p.codec = codec

	intents, err := intent.NewIssuer(cfg.PriceLamports, cfg.Recipient, cfg.IntentTTL(), p.clk)
	if err != nil {
		return nil, err
	}
	p.intents = intents

	p.verifier = verification.NewService(p.ledger, cfg.VerifyTimeout, p.log, p.rec)
	p.issuer = session.NewIssuer(codec, cfg.Recipient, cfg.SessionTTL(), !cfg.DemoMode, p.clk, p.log, p.rec)
	p.gate = gate.New(codec, cfg.PriceLamports, cfg.Recipient, p.log, p.rec)

	if cfg.ReplayGuard && p.guard == nil {
		p.guard = replay.NewGuard(cfg.SessionTTL(), 10000, p.clk)
	}

	return p, nil
}

// IssueIntent returns a fresh payment quote.
func (p *PayGate) IssueIntent() (*types.PaymentIntent, error) {
	return p.intents.Issue()
}

// Verify checks one transaction signature against the configured price and
// recipient without issuing anything.
func (p *PayGate) Verify(ctx context.Context, transactionID string) (*types.VerificationResult, error) {
	return p.verifier.Verify(ctx, transactionID, p.cfg.PriceLamports, p.cfg.Recipient)
}

// VerifyWithRetry keeps re-checking a not-yet-propagated transaction with
// backoff until it is decided or maxElapsed passes.
func (p *PayGate) VerifyWithRetry(ctx context.Context, transactionID string, maxElapsed time.Duration) (*types.VerificationResult, error) {
	return p.verifier.VerifyWithRetry(ctx, transactionID, p.cfg.PriceLamports, p.cfg.Recipient, maxElapsed)
}

// Pay runs the whole unlock flow for one transaction: verify, then issue a
// credential if and only if verification succeeded. Non-verified outcomes
// come back in the result with a zero credential, not as errors, so the
// transport can map each to its own response.
func (p *PayGate) Pay(ctx context.Context, transactionID string) (types.Credential, *types.SessionPayload, *types.VerificationResult, error) {
	result, err := p.Verify(ctx, transactionID)
	if err != nil {
		return types.Credential{}, nil, nil, err
	}
	if !result.Verified() {
		return types.Credential{}, nil, result, nil
	}

	if p.guard != nil && !p.guard.Consume(transactionID) {
		return types.Credential{}, nil, result, &types.Error{
			Code:    types.ErrReplayedTx,
			Message: "transaction already redeemed for a session",
		}
	}

	cred, payload, err := p.issuer.Issue(result)
	if err != nil {
		return types.Credential{}, nil, result, err
	}
	return cred, payload, result, nil
}

// Check validates an inbound credential. Absent or invalid credentials are
// ordinary denials carrying the current price and recipient.
func (p *PayGate) Check(token string) gate.Decision {
	return p.gate.Check(token)
}

// State maps a caller's credential onto the dashboard engine state: no
// credential yet means READY, a rejected one means PAYMENT_REQUIRED, a
// valid one means UNLOCKED.
func (p *PayGate) State(token string) types.EngineState {
	if token == "" {
		return types.StateReady
	}
	return p.gate.Check(token).State()
}

// CookieOptions exposes the storage attributes the transport must apply to
// the credential cookie.
func (p *PayGate) CookieOptions() session.CookieOptions {
	return p.issuer.CookieOptions()
}

// Ledger exposes the configured ledger client, mainly so demo mode can
// seed the in-memory ledger.
func (p *PayGate) Ledger() clients.Ledger {
	return p.ledger
}

// Config returns the configuration the gateway was built with.
func (p *PayGate) Config() *config.Config {
	return p.cfg
}

// Close releases the ledger client.
func (p *PayGate) Close() {
	p.ledger.Close()
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
