package session

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/types"
)

// CookieName is the credential's cookie under the reference HTTP binding.
const CookieName = "paygate_session"

// CookieOptions are the attributes the transport must apply when storing
// the credential on the client: script-inaccessible, origin-scoped, bounded
// to the session TTL, and secure-only in production.
type CookieOptions struct {
	Name     string
	Path     string
	MaxAge   int
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// Issuer mints credentials for verified payments. It never persists them;
// the client-held token is the only session state in the system.
type Issuer struct {
	codec      *Codec
	recipient  string
	sessionTTL time.Duration
	secureOnly bool
	clk        clock.Clock
	log        logger.Logger
	rec        metrics.Recorder
}

// NewIssuer wires an issuer over a codec. sessionTTL bounds every credential
// it produces; secureOnly marks cookies Secure for production transports.
func NewIssuer(
	codec *Codec,
	recipient string,
	sessionTTL time.Duration,
	secureOnly bool,
	clk clock.Clock,
	log logger.Logger,
	rec metrics.Recorder,
) *Issuer {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Issuer{
		codec:      codec,
		recipient:  recipient,
		sessionTTL: sessionTTL,
		secureOnly: secureOnly,
		clk:        clk,
		log:        log,
		rec:        rec,
	}
}

// Issue builds a version-1 session payload from a verified payment and
// encodes it. Handing an unverified result to Issue is a caller bug and is
// rejected, keeping the verify-before-issue ordering enforced in one place.
func (i *Issuer) Issue(verification *types.VerificationResult) (types.Credential, *types.SessionPayload, error) {
	if !verification.Verified() {
		return types.Credential{}, nil, &types.Error{
			Code:    types.ErrVerificationFailed,
			Message: "refusing to issue a session for an unverified payment",
		}
	}

	payload := types.SessionPayload{
		Version:       1,
		ExpiresAt:     i.clk.Now().Add(i.sessionTTL).UnixMilli(),
		Recipient:     i.recipient,
		PaidLamports:  verification.PaidLamports,
		TransactionID: verification.TransactionID,
	}

	cred, err := i.codec.Encode(payload)
	if err != nil {
		return types.Credential{}, nil, err
	}

	i.rec.IncCounter("session_issued", map[string]string{"ledger": "solana"})
	i.log.Info("session issued", map[string]any{
		"tx":  payload.TransactionID,
		"exp": payload.ExpiresAt,
	})
	return cred, &payload, nil
}

// CookieOptions returns the storage attributes for the credential cookie.
func (i *Issuer) CookieOptions() CookieOptions {
	return CookieOptions{
		Name:     CookieName,
		Path:     "/",
		MaxAge:   int(i.sessionTTL / time.Second),
		HTTPOnly: true,
		Secure:   i.secureOnly,
		SameSite: http.SameSiteLaxMode,
	}
}
