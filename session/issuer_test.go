package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeslabs/paygate/types"
)

const testRecipient = "7cVfgArCheMR6Cs4t6vz5rfnqd56vZq4ndaBrY5xkxXy"

func newTestIssuer(t *testing.T) (*Issuer, *Codec, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	codec, err := NewCodec(testSecret, clk, nil)
	require.NoError(t, err)
	issuer := NewIssuer(codec, testRecipient, 10*time.Minute, true, clk, nil, nil)
	return issuer, codec, clk
}

func TestIssuer_IssueBuildsV1Payload(t *testing.T) {
	issuer, codec, clk := newTestIssuer(t)

	cred, payload, err := issuer.Issue(&types.VerificationResult{
		Status:        types.StatusVerified,
		TransactionID: "tx1",
		PaidLamports:  12_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, payload.Version)
	assert.Equal(t, clk.Now().Add(10*time.Minute).UnixMilli(), payload.ExpiresAt)
	assert.Equal(t, testRecipient, payload.Recipient)
	assert.Equal(t, int64(12_000_000), payload.PaidLamports)
	assert.Equal(t, "tx1", payload.TransactionID)

	decoded, err := codec.Decode(cred.String())
	require.NoError(t, err)
	assert.Equal(t, *payload, *decoded)
}

func TestIssuer_RefusesUnverifiedResult(t *testing.T) {
	issuer, _, _ := newTestIssuer(t)

	for _, status := range []types.VerificationStatus{
		types.StatusNotFound,
		types.StatusFailed,
		types.StatusInsufficientAmount,
	} {
		_, _, err := issuer.Issue(&types.VerificationResult{Status: status, TransactionID: "tx1"})
		require.Error(t, err, "status %s", status)

		var perr *types.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, types.ErrVerificationFailed, perr.Code)
	}
}

func TestIssuer_CookieOptions(t *testing.T) {
	issuer, _, _ := newTestIssuer(t)

	opts := issuer.CookieOptions()
	assert.Equal(t, CookieName, opts.Name)
	assert.Equal(t, "/", opts.Path)
	assert.Equal(t, 600, opts.MaxAge)
	assert.True(t, opts.HTTPOnly)
	assert.True(t, opts.Secure)
	assert.Equal(t, http.SameSiteLaxMode, opts.SameSite)
}
