// Package session implements the credential half of the paywall: encoding
// verified payments into tamper-evident, expiring bearer tokens and
// decoding them back on every protected request.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"github.com/benbjohnson/clock"

	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/types"
)

// MinSecretLength is the shortest signing secret accepted at startup.
const MinSecretLength = 16

// ErrInvalidCredential is the only rejection a caller ever sees from
// Decode. MAC mismatch, malformed payload, and expiry are deliberately
// indistinguishable from the outside; internal logs carry the reason.
var ErrInvalidCredential = &types.Error{
	Code:    types.ErrInvalidCredential,
	Message: "invalid credential",
}

// Codec turns session payloads into credentials and back. Pure over the
// secret, the input, and the clock; it holds no per-session state.
type Codec struct {
	secret []byte
	clk    clock.Clock
	log    logger.Logger
}

// NewCodec creates a codec over a server-held secret. A short or missing
// secret is a startup-fatal misconfiguration, never a per-request error.
func NewCodec(secret string, clk clock.Clock, log logger.Logger) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, types.ConfigErrorf("signing secret must be at least %d characters", MinSecretLength)
	}
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Codec{secret: []byte(secret), clk: clk, log: log}, nil
}

// Encode serializes the payload to canonical JSON, base64url-encodes it,
// and appends a base64url HMAC-SHA256 over the encoded form.
func (c *Codec) Encode(payload types.SessionPayload) (types.Credential, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.Credential{}, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: "session payload is not serializable",
		}
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return types.Credential{
		EncodedPayload: encoded,
		MAC:            c.mac(encoded),
	}, nil
}

// Decode verifies and parses a token. Every failure path returns
// ErrInvalidCredential: the MAC is checked in constant time before the
// payload is even parsed, and an expired payload fails the same way a
// forged one does.
func (c *Codec) Decode(token string) (*types.SessionPayload, error) {
	cred, ok := types.SplitCredential(token)
	if !ok {
		c.log.Debug("credential rejected", map[string]any{"reason": "malformed token"})
		return nil, ErrInvalidCredential
	}

	expected := c.mac(cred.EncodedPayload)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(cred.MAC)) != 1 {
		c.log.Debug("credential rejected", map[string]any{"reason": "mac mismatch"})
		return nil, ErrInvalidCredential
	}

	raw, err := base64.RawURLEncoding.DecodeString(cred.EncodedPayload)
	if err != nil {
		c.log.Debug("credential rejected", map[string]any{"reason": "payload not base64url"})
		return nil, ErrInvalidCredential
	}

	var payload types.SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.log.Debug("credential rejected", map[string]any{"reason": "payload not parseable"})
		return nil, ErrInvalidCredential
	}

	if payload.ExpiresAt <= c.clk.Now().UnixMilli() {
		c.log.Debug("credential rejected", map[string]any{"reason": "expired", "exp": payload.ExpiresAt})
		return nil, ErrInvalidCredential
	}

	return &payload, nil
}

func (c *Codec) mac(encoded string) string {
	m := hmac.New(sha256.New, c.secret)
	m.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
