package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hadeslabs/paygate/types"
)

// SolanaLedger queries a Solana RPC node for confirmed transactions and
// reduces them to system-program transfers.
type SolanaLedger struct {
	rpcURL string
	client *rpc.Client
}

var _ Ledger = (*SolanaLedger)(nil)

// NewSolanaLedger creates a ledger client against the given RPC endpoint.
func NewSolanaLedger(rpcURL string) (*SolanaLedger, error) {
	if rpcURL == "" {
		return nil, types.ConfigErrorf("solana rpc url is required")
	}
	return &SolanaLedger{
		rpcURL: rpcURL,
		client: rpc.New(rpcURL),
	}, nil
}

// GetTransaction fetches a confirmed transaction by signature. A signature
// the node has not seen yields (nil, nil); the verifier maps that to a
// retryable not_found outcome.
func (l *SolanaLedger) GetTransaction(ctx context.Context, signature string) (*types.LedgerTransaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInvalidSignature, err)
	}

	maxVersion := uint64(0)
	out, err := l.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrRPCUnavailable, err)
	}
	if out == nil || out.Transaction == nil {
		return nil, nil
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrTransactionDecodeFailed, err)
	}

	ledgerTx := &types.LedgerTransaction{Signature: signature}
	if out.Meta != nil && out.Meta.Err != nil {
		ledgerTx.ExecutionErr = fmt.Sprintf("%v", out.Meta.Err)
		return ledgerTx, nil
	}

	transfers, err := extractSystemTransfers(tx)
	if err != nil {
		return nil, err
	}
	ledgerTx.Transfers = transfers
	return ledgerTx, nil
}

// extractSystemTransfers walks the message instructions and collects every
// system-program transfer. Non-transfer instructions are skipped, not
// rejected: wallets routinely bundle memo or compute-budget instructions.
func extractSystemTransfers(tx *solana.Transaction) ([]types.Transfer, error) {
	var transfers []types.Transfer

	for _, inst := range tx.Message.Instructions {
		if int(inst.ProgramIDIndex) >= len(tx.Message.AccountKeys) {
			return nil, fmt.Errorf("%s: program id index %d", ErrAccountMetaOutOfRange, inst.ProgramIDIndex)
		}
		prog := tx.Message.AccountKeys[inst.ProgramIDIndex]
		if !prog.Equals(solana.SystemProgramID) {
			continue
		}

		accountMetas := make([]*solana.AccountMeta, len(inst.Accounts))
		for i, accIdx := range inst.Accounts {
			if int(accIdx) >= len(tx.Message.AccountKeys) {
				return nil, fmt.Errorf("%s: account index %d", ErrAccountMetaOutOfRange, accIdx)
			}
			pub := tx.Message.AccountKeys[accIdx]
			writable, err := tx.Message.IsWritable(pub)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ErrInstructionDecodeFailed, err)
			}
			accountMetas[i] = &solana.AccountMeta{
				PublicKey:  pub,
				IsSigner:   tx.Message.IsSigner(pub),
				IsWritable: writable,
			}
		}

		sysInst, err := system.DecodeInstruction(accountMetas, inst.Data)
		if err != nil {
			// Not a decodable system instruction (e.g. advance nonce
			// with odd metas); ignore and keep scanning.
			continue
		}
		transfer, ok := sysInst.Impl.(*system.Transfer)
		if !ok || transfer.Lamports == nil || len(accountMetas) < 2 {
			continue
		}

		transfers = append(transfers, types.Transfer{
			Source:      accountMetas[0].PublicKey.String(),
			Destination: accountMetas[1].PublicKey.String(),
			Lamports:    int64(*transfer.Lamports),
		})
	}

	return transfers, nil
}

func (l *SolanaLedger) Close() {}
