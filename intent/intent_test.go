package intent

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeslabs/paygate/types"
)

const recipient = "7cVfgArCheMR6Cs4t6vz5rfnqd56vZq4ndaBrY5xkxXy"

func TestNewIssuer_RequiresRecipient(t *testing.T) {
	_, err := NewIssuer(10_000_000, "", 90*time.Second, nil)
	require.Error(t, err)

	var perr *types.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrConfigError, perr.Code)
}

func TestNewIssuer_RequiresPositivePrice(t *testing.T) {
	_, err := NewIssuer(0, recipient, 90*time.Second, nil)
	require.Error(t, err)
}

func TestIssue_QuoteCarriesConfiguredTerms(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))

	issuer, err := NewIssuer(10_000_000, recipient, 90*time.Second, clk)
	require.NoError(t, err)

	it, err := issuer.Issue()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), it.RequiredLamports)
	assert.Equal(t, recipient, it.Recipient)
	assert.Equal(t, clk.Now().Add(90*time.Second).UnixMilli(), it.ExpiresAt)
}

func TestIssue_ReferenceIsRandomHex(t *testing.T) {
	issuer, err := NewIssuer(10_000_000, recipient, 90*time.Second, nil)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		it, err := issuer.Issue()
		require.NoError(t, err)

		raw, err := hex.DecodeString(it.Reference)
		require.NoError(t, err)
		assert.Len(t, raw, referenceBytes)

		assert.False(t, seen[it.Reference], "duplicate reference %s", it.Reference)
		seen[it.Reference] = true
	}
}
