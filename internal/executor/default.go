// internal/executor/default.go
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

// DefaultExecutor submits through the endpoint pool's current connection and
// awaits confirmation bound by the blockhash validity window.
type DefaultExecutor struct {
	conns  *netpool.Pool
	logger *zap.Logger
}

func NewDefaultExecutor(conns *netpool.Pool, logger *zap.Logger) *DefaultExecutor {
	return &DefaultExecutor{
		conns:  conns,
		logger: logger.Named("executor"),
	}
}

// ProvidesComputeBudget is false: the coordinator prepends unit price/limit.
func (e *DefaultExecutor) ProvidesComputeBudget() bool { return false }

func (e *DefaultExecutor) ExecuteAndConfirm(
	ctx context.Context,
	tx *solana.Transaction,
	payer *wallet.Wallet,
	blockhash *rpc.LatestBlockhashResult,
) (*SubmissionResult, error) {
	conn := e.conns.GetConnection()

	send := func() (solana.Signature, error) {
		sig, err := conn.RPC.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: conn.Commitment,
		})
		if err != nil {
			e.logger.Warn("Retrying transaction send", zap.Error(err))
			return solana.Signature{}, err
		}
		return sig, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	sig, err := backoff.Retry(ctx, send,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		logSimulationError(e.logger, err)
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	e.logger.Debug("Transaction sent",
		zap.String("signature", sig.String()),
		zap.Uint64("last_valid_block_height", blockhash.LastValidBlockHeight))

	return awaitConfirmation(ctx, conn, sig, blockhash.LastValidBlockHeight, e.logger)
}
