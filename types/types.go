package types

import (
	"fmt"
	"strings"
)

// EngineState is the coarse access state a caller's credential maps onto.
type EngineState string

const (
	StateReady           EngineState = "READY"
	StatePaymentRequired EngineState = "PAYMENT_REQUIRED"
	StateUnlocked        EngineState = "UNLOCKED"
)

func (s EngineState) String() string {
	return string(s)
}

// PaymentIntent is a server-issued quote the payer must satisfy: pay at
// least RequiredLamports to Recipient before ExpiresAt. The reference is
// advisory in the base design; nothing correlates it with the paid
// transaction (see the intent package doc).
type PaymentIntent struct {
	// Amount required to unlock the resource, in lamports.
	RequiredLamports int64 `json:"requiredLamports"`

	// Base58 address the payment must be sent to.
	Recipient string `json:"recipient"`

	// Hex-encoded random reference, 16 bytes of entropy.
	Reference string `json:"reference"`

	// Unix milliseconds after which the quote should not be relied on.
	ExpiresAt int64 `json:"expiresAt"`
}

// VerificationStatus tags the outcome of a payment verification.
type VerificationStatus string

const (
	// StatusVerified means a single qualifying transfer met the threshold.
	StatusVerified VerificationStatus = "verified"

	// StatusNotFound means the ledger has not seen the transaction yet.
	// Retryable: the caller should back off and verify again.
	StatusNotFound VerificationStatus = "not_found"

	// StatusFailed means the ledger recorded an execution error for the
	// transaction. Terminal for this transaction id.
	StatusFailed VerificationStatus = "failed"

	// StatusInsufficientAmount means no single transfer to the recipient
	// reached the required amount. Terminal for this transaction id.
	StatusInsufficientAmount VerificationStatus = "insufficient_amount"
)

// VerificationResult is the outcome of checking one transaction against the
// configured price and recipient. Exactly one status is set; callers switch
// on Status rather than on error values.
type VerificationResult struct {
	Status        VerificationStatus `json:"status"`
	TransactionID string             `json:"transactionId"`

	// Largest single transfer to the recipient found in the transaction.
	PaidLamports int64 `json:"paidLamports,omitempty"`

	// Echoed on insufficient_amount so the client can decide to top up.
	RequiredLamports int64 `json:"requiredLamports,omitempty"`

	// Human-readable detail for failed/not_found outcomes.
	Error string `json:"error,omitempty"`
}

// Verified reports whether the payment qualifies for session issuance.
func (r *VerificationResult) Verified() bool {
	return r != nil && r.Status == StatusVerified
}

// Retryable reports whether the caller may usefully verify again later.
func (r *VerificationResult) Retryable() bool {
	return r != nil && r.Status == StatusNotFound
}

// SessionPayload is the claim set serialized into a credential. Field names
// follow the cookie wire format: short keys, unix-millisecond expiry.
type SessionPayload struct {
	Version       int    `json:"v"`
	ExpiresAt     int64  `json:"exp"`
	Recipient     string `json:"recipient"`
	PaidLamports  int64  `json:"paidLamports"`
	TransactionID string `json:"tx"`
}

// CredentialSeparator joins the payload and MAC segments. It is outside the
// base64url alphabet, so splitting on it is unambiguous.
const CredentialSeparator = "."

// Credential is the tamper-evident bearer token: base64url payload and
// base64url HMAC joined by CredentialSeparator. The server holds no copy;
// it re-verifies the client's on every check.
type Credential struct {
	EncodedPayload string
	MAC            string
}

func (c Credential) String() string {
	return c.EncodedPayload + CredentialSeparator + c.MAC
}

// SplitCredential parses a token into its two segments. The bool is false
// unless there are exactly two non-empty parts.
func SplitCredential(token string) (Credential, bool) {
	parts := strings.Split(token, CredentialSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Credential{}, false
	}
	return Credential{EncodedPayload: parts[0], MAC: parts[1]}, true
}

// Transfer is one value movement extracted from a ledger transaction.
type Transfer struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Lamports    int64  `json:"lamports"`
}

// LedgerTransaction is the ledger's view of a confirmed transaction, reduced
// to what verification needs: its execution status and its transfers.
type LedgerTransaction struct {
	Signature    string     `json:"signature"`
	ExecutionErr string     `json:"executionErr,omitempty"`
	Transfers    []Transfer `json:"transfers"`
}

// Failed reports whether the ledger recorded an execution error.
func (t *LedgerTransaction) Failed() bool {
	return t != nil && t.ExecutionErr != ""
}

// Error is the library error type carried by operations that can fail
// outside the verification result taxonomy.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrConfigError        = "CONFIG_ERROR"
	ErrInvalidCredential  = "INVALID_CREDENTIAL"
	ErrInvalidRequest     = "INVALID_REQUEST"
	ErrLedgerUnavailable  = "LEDGER_UNAVAILABLE"
	ErrReplayedTx         = "REPLAYED_TRANSACTION"
	ErrUnsupportedLedger  = "UNSUPPORTED_LEDGER"
	ErrVerificationFailed = "VERIFICATION_FAILED"
)

// ConfigErrorf builds a CONFIG_ERROR; used for startup-fatal misconfiguration.
func ConfigErrorf(format string, args ...interface{}) *Error {
	return &Error{Code: ErrConfigError, Message: fmt.Sprintf(format, args...)}
}
