package paygate

import (
	"github.com/benbjohnson/clock"

	"github.com/hadeslabs/paygate/clients"
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/replay"
)

type Option func(*PayGate)

func WithLogger(l logger.Logger) Option {
	return func(p *PayGate) {
		p.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *PayGate) {
		p.rec = r
	}
}

// WithClock substitutes the time source; tests use a mock clock to exercise
// expiry without sleeping.
func WithClock(c clock.Clock) Option {
	return func(p *PayGate) {
		p.clk = c
	}
}

// WithLedger overrides the ledger client chosen from configuration.
func WithLedger(l clients.Ledger) Option {
	return func(p *PayGate) {
		p.ledger = l
	}
}

// WithReplayGuard installs a specific guard instance, taking precedence
// over the ReplayGuard config flag.
func WithReplayGuard(g *replay.Guard) Option {
	return func(p *PayGate) {
		p.guard = g
	}
}
