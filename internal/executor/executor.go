// internal/executor/executor.go
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

// ErrSubmission marks unrecoverable submission failures (signing, encoding,
// rejection before send). An unconfirmed but submitted transaction is not an
// error; it comes back as a result with Confirmed=false.
var ErrSubmission = errors.New("transaction submission failed")

// SubmissionResult reports one submission attempt.
type SubmissionResult struct {
	Confirmed bool
	Signature string
	Error     string
}

// TransactionExecutor submits a signed transaction and awaits confirmation.
// ProvidesComputeBudget reports whether the executor supplies compute-budget
// instructions itself; the coordinator must not add its own in that case.
type TransactionExecutor interface {
	ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, payer *wallet.Wallet, blockhash *rpc.LatestBlockhashResult) (*SubmissionResult, error)
	ProvidesComputeBudget() bool
}

const confirmPollInterval = 800 * time.Millisecond

// awaitConfirmation polls the signature status until the blockhash expires.
func awaitConfirmation(
	ctx context.Context,
	conn *netpool.Connection,
	sig solana.Signature,
	lastValidBlockHeight uint64,
	logger *zap.Logger,
) (*SubmissionResult, error) {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		statuses, err := conn.RPC.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			logger.Debug("Signature status fetch failed", zap.Error(err))
			continue
		}
		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return &SubmissionResult{
					Signature: sig.String(),
					Error:     fmt.Sprintf("transaction failed on chain: %v", status.Err),
				}, nil
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return &SubmissionResult{Confirmed: true, Signature: sig.String()}, nil
			}
		}

		height, err := conn.RPC.GetBlockHeight(ctx, conn.Commitment)
		if err != nil {
			logger.Debug("Block height fetch failed", zap.Error(err))
			continue
		}
		if height > lastValidBlockHeight {
			return &SubmissionResult{
				Signature: sig.String(),
				Error:     "blockhash expired before confirmation",
			}, nil
		}
	}
}

// logSimulationError extracts simulation logs from an RPC error, best effort.
func logSimulationError(logger *zap.Logger, err error) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return
	}
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return
	}
	if logs, ok := data["logs"].([]interface{}); ok && len(logs) > 0 {
		logger.Debug("Simulation logs",
			zap.Int("code", rpcErr.Code),
			zap.Any("logs", logs))
	}
}
