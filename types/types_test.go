package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCredential(t *testing.T) {
	cred, ok := SplitCredential("abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc", cred.EncodedPayload)
	assert.Equal(t, "def", cred.MAC)
	assert.Equal(t, "abc.def", cred.String())

	for _, token := range []string{"", "abc", "abc.", ".def", "a.b.c"} {
		_, ok := SplitCredential(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestVerificationResultHelpers(t *testing.T) {
	assert.True(t, (&VerificationResult{Status: StatusVerified}).Verified())
	assert.True(t, (&VerificationResult{Status: StatusNotFound}).Retryable())
	assert.False(t, (&VerificationResult{Status: StatusFailed}).Retryable())
	assert.False(t, (&VerificationResult{Status: StatusInsufficientAmount}).Verified())

	var nilResult *VerificationResult
	assert.False(t, nilResult.Verified())
	assert.False(t, nilResult.Retryable())
}

func TestLedgerTransactionFailed(t *testing.T) {
	assert.False(t, (&LedgerTransaction{}).Failed())
	assert.True(t, (&LedgerTransaction{ExecutionErr: "x"}).Failed())

	var nilTx *LedgerTransaction
	assert.False(t, nilTx.Failed())
}
