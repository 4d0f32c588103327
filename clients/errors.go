package clients

const (
	// -----------------------------
	// SIGNATURE / LOOKUP
	// -----------------------------
	ErrInvalidSignature    = "invalid_transaction_signature"
	ErrTransactionNotFound = "transaction_not_found"

	// -----------------------------
	// TRANSACTION STRUCTURE
	// -----------------------------
	ErrTransactionDecodeFailed = "transaction_decode_failed"
	ErrInstructionDecodeFailed = "transaction_instruction_decode_failed"
	ErrAccountMetaOutOfRange   = "transaction_account_index_out_of_range"

	// -----------------------------
	// RPC
	// -----------------------------
	ErrRPCUnavailable = "ledger_rpc_unavailable"
	ErrRPCTimeout     = "ledger_rpc_timeout"
)
