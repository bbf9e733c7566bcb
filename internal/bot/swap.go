// internal/bot/swap.go
package bot

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/executor"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

type tradeDirection int

const (
	directionBuy tradeDirection = iota
	directionSell
)

type swapRequest struct {
	Keys        *raydium.PoolKeys
	InputATA    solana.PublicKey
	OutputATA   solana.PublicKey
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	AmountIn    uint64
	SlippagePct float64
	Direction   tradeDirection
}

// executeSwap quotes the pool, assembles the transaction and hands it to the
// executor. A zero computed output aborts with no transaction sent, signalled
// by a nil result.
func (b *Bot) executeSwap(ctx context.Context, req *swapRequest) (*executor.SubmissionResult, error) {
	conn := b.conns.GetConnection()

	reserves, err := raydium.FetchReserves(ctx, conn.RPC, req.Keys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool info: %w", err)
	}

	reserveIn, reserveOut := reserves.Quote, reserves.Base
	if req.Direction == directionSell {
		reserveIn, reserveOut = reserves.Base, reserves.Quote
	}

	_, minAmountOut := raydium.ComputeAmountOut(reserveIn, reserveOut, req.AmountIn, req.SlippagePct)
	if minAmountOut == 0 {
		b.logger.Debug("Computed zero output, aborting swap",
			zap.String("mint", req.OutputMint.String()),
			zap.Uint64("amount_in", req.AmountIn))
		return nil, nil
	}

	blockhash, err := conn.RPC.GetLatestBlockhash(ctx, conn.Commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	var instructions []solana.Instruction

	// Warp and bundle relays attach their own compute budget.
	if !b.executor.ProvidesComputeBudget() {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(b.cfg.UnitPrice).Build(),
			computebudget.NewSetComputeUnitLimitInstruction(b.cfg.UnitLimit).Build(),
		)
	}

	if req.Direction == directionBuy {
		instructions = append(instructions, createATAIdempotentInstruction(
			b.wallet.PublicKey,
			b.wallet.PublicKey,
			req.OutputMint,
			req.OutputATA,
		))
	}

	instructions = append(instructions, raydium.MakeSwapInstruction(
		req.Keys,
		req.InputATA,
		req.OutputATA,
		b.wallet.PublicKey,
		req.AmountIn,
		minAmountOut,
	))

	if req.Direction == directionSell {
		// Reclaim rent from the emptied token account.
		instructions = append(instructions, token.NewCloseAccountInstruction(
			req.InputATA,
			b.wallet.PublicKey,
			b.wallet.PublicKey,
			nil,
		).Build())
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash.Value.Blockhash,
		solana.TransactionPayer(b.wallet.PublicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	if err := b.wallet.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return b.executor.ExecuteAndConfirm(ctx, tx, b.wallet, blockhash.Value)
}

// createATAIdempotentInstruction builds the CreateIdempotent variant of the
// associated-token-account instruction: a no-op when the account exists.
func createATAIdempotentInstruction(payer, owner, mint, ata solana.PublicKey) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(ata).WRITE(),
		solana.Meta(owner),
		solana.Meta(mint),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		accounts,
		[]byte{1}, // 1 = create_idempotent
	)
}
