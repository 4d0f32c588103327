// Package intent produces payment quotes: the price, recipient, and unique
// reference a payer must satisfy before the quote expires.
//
// Known gap, kept on purpose: the reference is returned to the client but
// never correlated with the paid transaction. Verification accepts any
// qualifying payment regardless of which quote prompted it. Binding the two
// would need a server-side reference store plus a memo check on the
// transaction, which this stateless design does not have.
package intent

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hadeslabs/paygate/types"
)

// referenceBytes is the entropy drawn per quote.
const referenceBytes = 16

// Issuer mints payment intents from server-side configuration. Stateless:
// issued intents are never recorded.
type Issuer struct {
	requiredLamports int64
	recipient        string
	ttl              time.Duration
	clk              clock.Clock
}

// NewIssuer validates the quote configuration up front so Issue itself
// cannot fail on config.
func NewIssuer(requiredLamports int64, recipient string, ttl time.Duration, clk clock.Clock) (*Issuer, error) {
	if recipient == "" {
		return nil, types.ConfigErrorf("payment recipient is not configured")
	}
	if requiredLamports <= 0 {
		return nil, types.ConfigErrorf("required amount must be positive, got %d", requiredLamports)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Issuer{
		requiredLamports: requiredLamports,
		recipient:        recipient,
		ttl:              ttl,
		clk:              clk,
	}, nil
}

// Issue returns a fresh quote with a random reference. The only failure
// mode left is entropy exhaustion, which is surfaced rather than papered
// over with a weak reference.
func (i *Issuer) Issue() (*types.PaymentIntent, error) {
	buf := make([]byte, referenceBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("drawing intent reference: %w", err)
	}

	return &types.PaymentIntent{
		RequiredLamports: i.requiredLamports,
		Recipient:        i.recipient,
		Reference:        hex.EncodeToString(buf),
		ExpiresAt:        i.clk.Now().Add(i.ttl).UnixMilli(),
	}, nil
}
