// internal/bot/bot.go
package bot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-sniper/internal/config"
	"github.com/rovshanmuradov/solana-sniper/internal/executor"
	"github.com/rovshanmuradov/solana-sniper/internal/listcache"
	"github.com/rovshanmuradov/solana-sniper/internal/listeners"
	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
	"github.com/rovshanmuradov/solana-sniper/internal/storage"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

// listenerControl is the slice of the subscription layer the coordinator
// drives for its pause-on-sell protocol.
type listenerControl interface {
	Start(ctx context.Context, cfg *listeners.Config) error
	Stop()
}

// filterEngine is the candidate eligibility check.
type filterEngine interface {
	Enabled() bool
	Execute(ctx context.Context, keys *raydium.PoolKeys) bool
}

// marketSource resolves market descriptors, possibly from chain.
type marketSource interface {
	Get(ctx context.Context, id solana.PublicKey) (*raydium.MarketStateV3, error)
}

// Options wires the coordinator's collaborators.
type Options struct {
	Config    *config.Config
	Conns     *netpool.Pool
	Wallet    *wallet.Wallet
	Executor  executor.TransactionExecutor
	Filters   filterEngine
	Markets   marketSource
	Pools     *storage.PoolCache
	SnipeList *listcache.Cache
	AvoidList *listcache.Cache
	Logger    *zap.Logger
}

// Bot serializes buys and sells against new pools. With oneTokenAtATime a
// single trade mutex guards the critical section and subscriptions pause
// while a sell runs.
type Bot struct {
	cfg       *config.Config
	conns     *netpool.Pool
	wallet    *wallet.Wallet
	executor  executor.TransactionExecutor
	filters   filterEngine
	markets   marketSource
	pools     *storage.PoolCache
	snipeList *listcache.Cache
	avoidList *listcache.Cache
	logger    *zap.Logger

	quoteATA solana.PublicKey

	tradeMu            sync.Mutex
	sellExecutionCount atomic.Int32

	// Seam for tests; points at executeSwap in production.
	swapFn func(ctx context.Context, req *swapRequest) (*executor.SubmissionResult, error)
}

func New(opts *Options) (*Bot, error) {
	quoteATA, err := opts.Wallet.AssociatedTokenAccount(opts.Config.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive quote token account: %w", err)
	}

	b := &Bot{
		cfg:       opts.Config,
		conns:     opts.Conns,
		wallet:    opts.Wallet,
		executor:  opts.Executor,
		filters:   opts.Filters,
		markets:   opts.Markets,
		pools:     opts.Pools,
		snipeList: opts.SnipeList,
		avoidList: opts.AvoidList,
		logger:    opts.Logger.Named("bot"),
		quoteATA:  quoteATA,
	}
	b.swapFn = b.executeSwap
	return b, nil
}

// HandleNewPool runs the buy path for one pool event.
func (b *Bot) HandleNewPool(ctx context.Context, ev listeners.PoolEvent, lst listenerControl) {
	mint := ev.State.BaseMint
	logger := b.logger.With(
		zap.String("mint", mint.String()),
		zap.String("pool", ev.AccountID.String()),
	)

	if b.cfg.UseSnipeList && !b.snipeList.Contains(mint.String()) {
		logger.Debug("Skipping buy, mint not in snipe list")
		return
	}
	if b.cfg.UseAvoidList && b.avoidList.Contains(mint.String()) {
		logger.Debug("Skipping buy, mint in avoid list")
		return
	}

	if b.cfg.AutoBuyDelay > 0 {
		logger.Debug("Waiting before buy", zap.Duration("delay", b.cfg.AutoBuyDelay))
		if !sleepCtx(ctx, b.cfg.AutoBuyDelay) {
			return
		}
	}

	var stoppedListeners, mutexAcquired bool
	if b.cfg.OneTokenAtATime {
		if b.sellExecutionCount.Load() > 0 {
			lst.Stop()
			stoppedListeners = true
		}
		// A sell in flight restarts the subscriptions it paused; this early
		// return deliberately leaves them to it.
		if b.sellExecutionCount.Load() > 0 || !b.tradeMu.TryLock() {
			logger.Debug("Skipping buy, another trade in progress")
			return
		}
		mutexAcquired = true
	}

	defer func() {
		if b.cfg.OneTokenAtATime {
			if mutexAcquired {
				b.tradeMu.Unlock()
			}
			if stoppedListeners {
				b.restartListeners(ctx, lst)
			}
		}
	}()

	if !ev.State.HasMarket() {
		logger.Debug("Skipping pool without order-book market")
		return
	}

	var market *raydium.MarketStateV3
	var baseATA solana.PublicKey
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := b.markets.Get(gctx, ev.State.MarketID)
		market = m
		return err
	})
	g.Go(func() error {
		ata, err := b.wallet.AssociatedTokenAccount(mint)
		baseATA = ata
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to prepare buy", zap.Error(err))
		return
	}

	keys, err := raydium.BuildPoolKeys(ev.AccountID, ev.State, market)
	if err != nil {
		logger.Error("Failed to build pool keys", zap.Error(err))
		return
	}

	if !b.cfg.UseSnipeList && !b.matchFilters(ctx, keys) {
		logger.Debug("Pool did not pass the filter window")
		return
	}

	amountIn := b.cfg.QuoteAmount.Shift(int32(keys.QuoteDecimals)).BigInt().Uint64()

	for attempt := 0; attempt < b.cfg.MaxBuyRetries; attempt++ {
		logger.Info("🚀 Buying token",
			zap.Uint64("amount_in", amountIn),
			zap.Int("attempt", attempt+1))

		result, err := b.swapFn(ctx, &swapRequest{
			Keys:        keys,
			InputATA:    b.quoteATA,
			OutputATA:   baseATA,
			InputMint:   b.cfg.QuoteMint,
			OutputMint:  mint,
			AmountIn:    amountIn,
			SlippagePct: b.cfg.BuySlippage,
			Direction:   directionBuy,
		})
		if err != nil {
			logger.Error("Buy submission failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		if result == nil {
			break
		}
		if result.Confirmed {
			logger.Info("✅ Buy confirmed",
				zap.String("signature", result.Signature),
				zap.String("url", explorerURL(result.Signature)))
			b.markBought(mint)
			break
		}
		logger.Info("Buy not confirmed",
			zap.Int("attempt", attempt+1),
			zap.String("signature", result.Signature),
			zap.String("error", result.Error))
	}
}

// HandleWalletChange runs the sell path for one wallet token-account event.
func (b *Bot) HandleWalletChange(ctx context.Context, ev listeners.WalletEvent, lst listenerControl) {
	if ev.Account.Mint.Equals(b.cfg.QuoteMint) {
		return
	}

	logger := b.logger.With(
		zap.String("mint", ev.Account.Mint.String()),
		zap.String("account", ev.AccountID.String()),
	)

	var stoppedListeners bool
	if b.cfg.OneTokenAtATime {
		b.sellExecutionCount.Add(1)
		lst.Stop()
		stoppedListeners = true
	}

	defer func() {
		if b.cfg.OneTokenAtATime {
			b.sellExecutionCount.Add(-1)
			if stoppedListeners {
				b.restartListeners(ctx, lst)
			}
		}
	}()

	rec, ok := b.pools.Get(ev.Account.Mint)
	if !ok {
		logger.Debug("No pool recorded for token, skipping sell")
		return
	}

	amountIn := ev.Account.Amount
	if amountIn == 0 {
		return
	}

	if b.cfg.AutoSellDelay > 0 {
		logger.Debug("Waiting before sell", zap.Duration("delay", b.cfg.AutoSellDelay))
		if !sleepCtx(ctx, b.cfg.AutoSellDelay) {
			return
		}
	}

	market, err := b.markets.Get(ctx, rec.State.MarketID)
	if err != nil {
		logger.Error("Failed to fetch market for sell", zap.Error(err))
		return
	}
	keys, err := raydium.BuildPoolKeys(rec.ID, rec.State, market)
	if err != nil {
		logger.Error("Failed to build pool keys", zap.Error(err))
		return
	}

	b.watchPrice(ctx, keys, amountIn)

	for attempt := 0; attempt < b.cfg.MaxSellRetries; attempt++ {
		logger.Info("💰 Selling token",
			zap.Uint64("amount_in", amountIn),
			zap.Int("attempt", attempt+1))

		result, err := b.swapFn(ctx, &swapRequest{
			Keys:        keys,
			InputATA:    ev.AccountID,
			OutputATA:   b.quoteATA,
			InputMint:   ev.Account.Mint,
			OutputMint:  b.cfg.QuoteMint,
			AmountIn:    amountIn,
			SlippagePct: b.cfg.SellSlippage,
			Direction:   directionSell,
		})
		if err != nil {
			logger.Error("Sell submission failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		if result == nil {
			break
		}
		if result.Confirmed {
			logger.Info("✅ Sell confirmed",
				zap.String("signature", result.Signature),
				zap.String("url", explorerURL(result.Signature)))
			break
		}
		logger.Info("Sell not confirmed",
			zap.Int("attempt", attempt+1),
			zap.String("signature", result.Signature),
			zap.String("error", result.Error))
	}
}

// matchFilters polls the filter engine until consecutiveMatchCount rounds
// pass back to back or the window closes. A single failed round resets the
// streak.
func (b *Bot) matchFilters(ctx context.Context, keys *raydium.PoolKeys) bool {
	if !b.filters.Enabled() {
		return true
	}
	interval := b.cfg.FilterCheckInterval
	duration := b.cfg.FilterCheckDuration
	needed := b.cfg.ConsecutiveMatchCount
	if interval <= 0 || duration <= 0 || needed <= 0 {
		return true
	}

	rounds := int(duration / interval)
	matches := 0
	for round := 0; round < rounds; round++ {
		if b.filters.Execute(ctx, keys) {
			matches++
			if matches >= needed {
				return true
			}
		} else {
			matches = 0
		}
		if round < rounds-1 && !sleepCtx(ctx, interval) {
			return false
		}
	}
	return false
}

// markBought records a completed buy so the same mint is not sniped twice.
func (b *Bot) markBought(mint solana.PublicKey) {
	if !b.cfg.UseAvoidList {
		return
	}
	if err := b.avoidList.Add(mint.String(), "bought"); err != nil {
		b.logger.Error("Failed to record mint in avoid list",
			zap.String("mint", mint.String()),
			zap.Error(err))
	}
}

func (b *Bot) restartListeners(ctx context.Context, lst listenerControl) {
	if err := lst.Start(ctx, nil); err != nil {
		b.logger.Error("Failed to restart subscriptions", zap.Error(err))
	}
}

// SellsInFlight exposes the sell counter for wiring-level checks.
func (b *Bot) SellsInFlight() int {
	return int(b.sellExecutionCount.Load())
}

// sleepCtx sleeps for d, returning false when the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func explorerURL(signature string) string {
	return "https://solscan.io/tx/" + signature
}
