package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/hadeslabs/paygate/clients"
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/types"
)

// Service checks submitted transaction signatures against the configured
// price and recipient. It is the only component that talks to an untrusted
// external system, so every outcome is a tagged status the caller can tell
// apart (retryable vs terminal), never a bare error for ledger states.
type Service struct {
	ledger  clients.Ledger
	timeout time.Duration
	log     logger.Logger
	rec     metrics.Recorder
}

// NewService creates a verification service. A nil logger or recorder falls
// back to the noop implementations.
func NewService(ledger clients.Ledger, timeout time.Duration, log logger.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{
		ledger:  ledger,
		timeout: timeout,
		log:     log,
		rec:     rec,
	}
}

// Verify queries the ledger for the transaction and decides whether it pays
// requiredLamports to recipient.
//
// The threshold is applied to the single largest transfer to the recipient,
// not the sum of transfers. A wallet that splits value across instructions
// still qualifies as long as one transfer meets the price; unrelated small
// transfers can never be combined to reach it.
func (s *Service) Verify(
	ctx context.Context,
	transactionID string,
	requiredLamports int64,
	recipient string,
) (*types.VerificationResult, error) {
	if transactionID == "" {
		return nil, &types.Error{Code: types.ErrInvalidRequest, Message: "transaction signature is required"}
	}
	if recipient == "" {
		return nil, types.ConfigErrorf("recipient is not configured")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	tx, err := s.ledger.GetTransaction(verifyCtx, transactionID)
	s.rec.ObserveLatency("ledger_query", time.Since(start), map[string]string{"ledger": "solana"})

	if err != nil {
		// A slow node is indistinguishable from an unpropagated
		// transaction; both are retryable.
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("ledger query timed out", map[string]any{"tx": transactionID})
			return s.result(&types.VerificationResult{
				Status:        types.StatusNotFound,
				TransactionID: transactionID,
				Error:         "ledger query timed out",
			}), nil
		}
		s.log.Error("ledger query failed", map[string]any{"tx": transactionID, "err": err.Error()})
		return nil, &types.Error{
			Code:    types.ErrLedgerUnavailable,
			Message: fmt.Sprintf("ledger query failed: %v", err),
		}
	}

	if tx == nil {
		return s.result(&types.VerificationResult{
			Status:        types.StatusNotFound,
			TransactionID: transactionID,
			Error:         "transaction not found (yet)",
		}), nil
	}

	if tx.Failed() {
		return s.result(&types.VerificationResult{
			Status:        types.StatusFailed,
			TransactionID: transactionID,
			Error:         fmt.Sprintf("transaction failed: %s", tx.ExecutionErr),
		}), nil
	}

	paid := maxTransferTo(tx.Transfers, recipient)
	required := decimal.NewFromInt(requiredLamports)
	if decimal.NewFromInt(paid).LessThan(required) {
		return s.result(&types.VerificationResult{
			Status:           types.StatusInsufficientAmount,
			TransactionID:    transactionID,
			PaidLamports:     paid,
			RequiredLamports: requiredLamports,
			Error:            "payment too small or not found",
		}), nil
	}

	s.log.Info("payment verified", map[string]any{
		"tx":   transactionID,
		"paid": paid,
	})
	return s.result(&types.VerificationResult{
		Status:        types.StatusVerified,
		TransactionID: transactionID,
		PaidLamports:  paid,
	}), nil
}

// maxTransferTo returns the largest single transfer amount whose
// destination matches the recipient, or 0 when there is none.
func maxTransferTo(transfers []types.Transfer, recipient string) int64 {
	var paid int64
	for _, tr := range transfers {
		if tr.Destination != recipient {
			continue
		}
		if tr.Lamports > paid {
			paid = tr.Lamports
		}
	}
	return paid
}

func (s *Service) result(r *types.VerificationResult) *types.VerificationResult {
	s.rec.IncCounter("verify_"+string(r.Status), map[string]string{"ledger": "solana"})
	return r
}

// VerifyWithRetry re-runs Verify on not_found outcomes with exponential
// backoff until the transaction is decided or maxElapsed passes. Terminal
// outcomes (failed, insufficient_amount, verified) return immediately.
func (s *Service) VerifyWithRetry(
	ctx context.Context,
	transactionID string,
	requiredLamports int64,
	recipient string,
	maxElapsed time.Duration,
) (*types.VerificationResult, error) {
	var last *types.VerificationResult

	errNotSeen := errors.New("transaction not seen yet")
	operation := func() error {
		res, err := s.Verify(ctx, transactionID, requiredLamports, recipient)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = res
		if res.Retryable() {
			return errNotSeen
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxElapsedTime = maxElapsed

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Unwrap()
		}
		// Retries exhausted with the transaction still unseen; report
		// the retryable outcome so the caller can try again later.
		if last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}
