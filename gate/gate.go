// Package gate decides access to the protected resource from a presented
// credential. It never errors: absence, forgery, and expiry are all the
// same normal Deny outcome.
package gate

import (
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/session"
	"github.com/hadeslabs/paygate/types"
)

// Decision is the gate's answer for one request. A denial always carries
// the current price and recipient so a blocked caller can construct a new
// payment without a separate lookup.
type Decision struct {
	Allowed bool

	// Set only when Allowed.
	Payload *types.SessionPayload

	// Set only when denied.
	RequiredLamports int64
	Recipient        string
}

// State maps the decision onto the engine state shown by the dashboard.
func (d Decision) State() types.EngineState {
	if d.Allowed {
		return types.StateUnlocked
	}
	return types.StatePaymentRequired
}

// Gate validates inbound credentials against the codec and current time.
// Purely a function of its inputs; nothing is mutated per check.
type Gate struct {
	codec            *session.Codec
	requiredLamports int64
	recipient        string
	log              logger.Logger
	rec              metrics.Recorder
}

func New(codec *session.Codec, requiredLamports int64, recipient string, log logger.Logger, rec metrics.Recorder) *Gate {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Gate{
		codec:            codec,
		requiredLamports: requiredLamports,
		recipient:        recipient,
		log:              log,
		rec:              rec,
	}
}

// Check decodes the credential and allows or denies. An empty token is an
// ordinary denial, not an error.
func (g *Gate) Check(token string) Decision {
	deny := Decision{
		RequiredLamports: g.requiredLamports,
		Recipient:        g.recipient,
	}

	if token == "" {
		g.rec.IncCounter("gate_deny", map[string]string{"ledger": "solana"})
		return deny
	}

	payload, err := g.codec.Decode(token)
	if err != nil {
		g.rec.IncCounter("gate_deny", map[string]string{"ledger": "solana"})
		return deny
	}

	g.rec.IncCounter("gate_allow", map[string]string{"ledger": "solana"})
	return Decision{Allowed: true, Payload: payload}
}
