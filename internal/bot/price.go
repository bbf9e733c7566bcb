// internal/bot/price.go
package bot

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// quoteFn samples the current sell value of the position, in quote units.
type quoteFn func(ctx context.Context) (decimal.Decimal, error)

// watchPrice blocks until take-profit or stop-loss triggers, or the poll
// window closes. The caller sells either way.
func (b *Bot) watchPrice(ctx context.Context, keys *raydium.PoolKeys, amountIn uint64) {
	if b.cfg.PriceCheckDuration <= 0 || b.cfg.PriceCheckInterval <= 0 {
		return
	}

	quote := func(ctx context.Context) (decimal.Decimal, error) {
		conn := b.conns.GetConnection()
		reserves, err := raydium.FetchReserves(ctx, conn.RPC, keys)
		if err != nil {
			return decimal.Zero, err
		}
		_, minOut := raydium.ComputeAmountOut(reserves.Base, reserves.Quote, amountIn, b.cfg.SellSlippage)
		return decimal.New(int64(minOut), -int32(keys.QuoteDecimals)), nil
	}

	b.waitForExit(ctx, quote)
}

// waitForExit polls quote until it crosses a threshold derived from the
// original quote amount. Iteration failures are logged and skipped.
func (b *Bot) waitForExit(ctx context.Context, quote quoteFn) {
	hundred := decimal.NewFromInt(100)
	takeProfit := b.cfg.QuoteAmount.Add(
		b.cfg.QuoteAmount.Mul(decimal.NewFromFloat(b.cfg.TakeProfit)).Div(hundred))
	stopLoss := b.cfg.QuoteAmount.Sub(
		b.cfg.QuoteAmount.Mul(decimal.NewFromFloat(b.cfg.StopLoss)).Div(hundred))

	rounds := int(b.cfg.PriceCheckDuration / b.cfg.PriceCheckInterval)
	logger := b.logger.With(
		zap.String("take_profit", takeProfit.String()),
		zap.String("stop_loss", stopLoss.String()))

	for round := 0; round < rounds; round++ {
		out, err := quote(ctx)
		if err != nil {
			logger.Debug("Price check failed", zap.Error(err))
		} else {
			logger.Debug("Price check",
				zap.String("current", out.String()),
				zap.Int("round", round+1))

			if out.LessThan(stopLoss) || out.GreaterThan(takeProfit) {
				logger.Info("🎯 Exit threshold reached", zap.String("current", out.String()))
				return
			}
		}

		if round < rounds-1 && !sleepCtx(ctx, b.cfg.PriceCheckInterval) {
			return
		}
	}
}
