// internal/listeners/listeners.go
package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

const eventBufferSize = 128

// Config selects which program streams to subscribe.
type Config struct {
	QuoteMint       solana.PublicKey
	WalletPublicKey solana.PublicKey

	SubscribeMarkets bool
	SubscribeCpmm    bool
	SubscribeWallet  bool
	Devnet           bool
}

// Listeners owns the websocket subscriptions and fans account changes out to
// typed channels. It applies no backpressure: events are dropped with a
// warning when a consumer falls behind.
type Listeners struct {
	conns  *netpool.Pool
	logger *zap.Logger

	mu      sync.Mutex
	cfg     *Config
	wsConn  *ws.Client
	cancel  context.CancelFunc
	handles []*handle
	wg      sync.WaitGroup

	poolCh   chan PoolEvent
	marketCh chan MarketEvent
	walletCh chan WalletEvent
}

type handle struct {
	id   string
	name string
	sub  *ws.ProgramSubscription
}

func New(conns *netpool.Pool, logger *zap.Logger) *Listeners {
	return &Listeners{
		conns:    conns,
		logger:   logger.Named("listeners"),
		poolCh:   make(chan PoolEvent, eventBufferSize),
		marketCh: make(chan MarketEvent, eventBufferSize),
		walletCh: make(chan WalletEvent, eventBufferSize),
	}
}

// Pools delivers new-pool events (classical AMM and, when enabled, CPMM).
func (l *Listeners) Pools() <-chan PoolEvent { return l.poolCh }

// Markets delivers order-book market creations.
func (l *Listeners) Markets() <-chan MarketEvent { return l.marketCh }

// Wallet delivers token-account changes of the trading wallet.
func (l *Listeners) Wallet() <-chan WalletEvent { return l.walletCh }

// Start establishes the configured subscriptions. A nil config reuses the
// previous one; starting while running resubscribes from scratch.
func (l *Listeners) Start(ctx context.Context, cfg *Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.handles) > 0 {
		l.stopLocked()
	}

	if cfg == nil {
		cfg = l.cfg
	}
	if cfg == nil {
		return fmt.Errorf("no subscription config available")
	}
	l.cfg = cfg

	conn := l.conns.GetConnection()
	wsConn, err := ws.Connect(ctx, conn.WSURL)
	if err != nil {
		return fmt.Errorf("failed to connect websocket %s: %w", conn.WSURL, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	l.wsConn = wsConn
	l.cancel = cancel

	if err := l.subscribePools(subCtx, wsConn, conn.Commitment, cfg); err != nil {
		l.stopLocked()
		return err
	}
	if cfg.SubscribeMarkets {
		if err := l.subscribeMarkets(subCtx, wsConn, conn.Commitment, cfg); err != nil {
			l.stopLocked()
			return err
		}
	}
	if cfg.SubscribeCpmm {
		if err := l.subscribeCpmmPools(subCtx, wsConn, conn.Commitment, cfg); err != nil {
			l.stopLocked()
			return err
		}
	}
	if cfg.SubscribeWallet {
		if err := l.subscribeWallet(subCtx, wsConn, conn.Commitment, cfg); err != nil {
			l.stopLocked()
			return err
		}
	}

	l.logger.Info("🔌 Subscriptions established",
		zap.Int("count", len(l.handles)),
		zap.String("ws", conn.WSURL))
	return nil
}

// Stop unsubscribes every handle in parallel and clears the handle set.
// Individual unsubscribe failures are logged and swallowed.
func (l *Listeners) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// HandleCount reports the number of live subscription handles.
func (l *Listeners) HandleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handles)
}

func (l *Listeners) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	var g errgroup.Group
	for _, h := range l.handles {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error("Unsubscribe failed",
						zap.String("subscription", h.name),
						zap.Any("panic", r))
				}
			}()
			h.sub.Unsubscribe()
			l.logger.Debug("Unsubscribed",
				zap.String("subscription", h.name),
				zap.String("id", h.id))
			return nil
		})
	}
	_ = g.Wait()
	l.handles = nil

	if l.wsConn != nil {
		l.wsConn.Close()
		l.wsConn = nil
	}
	l.wg.Wait()
}

func (l *Listeners) subscribePools(ctx context.Context, wsConn *ws.Client, commitment rpc.CommitmentType, cfg *Config) error {
	sub, err := wsConn.ProgramSubscribeWithOpts(
		raydium.AmmV4Program,
		commitment,
		solana.EncodingBase64,
		[]rpc.RPCFilter{
			{DataSize: raydium.LiquidityStateV4Size},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: raydium.LiquidityQuoteMintOffset,
				Bytes:  solana.Base58(cfg.QuoteMint.Bytes()),
			}},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: raydium.LiquidityMarketProgramOffset,
				Bytes:  solana.Base58(raydium.OpenBookProgram.Bytes()),
			}},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: raydium.LiquidityStatusOffset,
				Bytes:  solana.Base58(raydium.PoolStatusSwapOnly),
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("pool subscription failed: %w", err)
	}

	l.track(ctx, "pools", sub, func(result *ws.ProgramResult) {
		state, err := raydium.DecodeLiquidityStateV4(result.Value.Account.Data.GetBinary())
		if err != nil {
			l.logger.Debug("Skipping undecodable pool account", zap.Error(err))
			return
		}
		l.emitPool(PoolEvent{AccountID: result.Value.Pubkey, State: state})
	})
	return nil
}

func (l *Listeners) subscribeMarkets(ctx context.Context, wsConn *ws.Client, commitment rpc.CommitmentType, cfg *Config) error {
	sub, err := wsConn.ProgramSubscribeWithOpts(
		raydium.OpenBookProgram,
		commitment,
		solana.EncodingBase64,
		[]rpc.RPCFilter{
			{DataSize: raydium.MarketStateV3Size},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: raydium.MarketQuoteMintOffset,
				Bytes:  solana.Base58(cfg.QuoteMint.Bytes()),
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("market subscription failed: %w", err)
	}

	l.track(ctx, "markets", sub, func(result *ws.ProgramResult) {
		state, err := raydium.DecodeMarketStateV3(result.Value.Account.Data.GetBinary())
		if err != nil {
			l.logger.Debug("Skipping undecodable market account", zap.Error(err))
			return
		}
		l.emitMarket(MarketEvent{AccountID: result.Value.Pubkey, State: state})
	})
	return nil
}

func (l *Listeners) subscribeCpmmPools(ctx context.Context, wsConn *ws.Client, commitment rpc.CommitmentType, cfg *Config) error {
	program := raydium.CpmmProgram
	if cfg.Devnet {
		program = raydium.CpmmProgramDevnet
	}

	sub, err := wsConn.ProgramSubscribeWithOpts(
		program,
		commitment,
		solana.EncodingBase64,
		[]rpc.RPCFilter{
			{DataSize: raydium.CpmmPoolStateSize},
		},
	)
	if err != nil {
		return fmt.Errorf("cpmm subscription failed: %w", err)
	}

	l.track(ctx, "cpmm-pools", sub, func(result *ws.ProgramResult) {
		state, err := raydium.DecodeCpmmPoolState(result.Value.Account.Data.GetBinary())
		if err != nil {
			l.logger.Debug("Skipping undecodable cpmm account", zap.Error(err))
			return
		}
		l.emitPool(PoolEvent{
			AccountID: result.Value.Pubkey,
			State:     state.Normalize(cfg.QuoteMint),
			IsCpmm:    true,
		})
	})
	return nil
}

func (l *Listeners) subscribeWallet(ctx context.Context, wsConn *ws.Client, commitment rpc.CommitmentType, cfg *Config) error {
	sub, err := wsConn.ProgramSubscribeWithOpts(
		solana.TokenProgramID,
		commitment,
		solana.EncodingBase64,
		[]rpc.RPCFilter{
			{DataSize: raydium.TokenAccountSize},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: raydium.TokenAccountOwnerOffset,
				Bytes:  solana.Base58(cfg.WalletPublicKey.Bytes()),
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("wallet subscription failed: %w", err)
	}

	l.track(ctx, "wallet", sub, func(result *ws.ProgramResult) {
		account, err := decodeTokenAccount(result.Value.Account.Data.GetBinary())
		if err != nil {
			l.logger.Debug("Skipping undecodable token account", zap.Error(err))
			return
		}
		l.emitWallet(WalletEvent{AccountID: result.Value.Pubkey, Account: account})
	})
	return nil
}

// track registers the handle and runs the receive loop until the subscription
// dies. Stop ends it by cancelling ctx and unsubscribing; receive errors seen
// after ctx is cancelled are not logged.
func (l *Listeners) track(ctx context.Context, name string, sub *ws.ProgramSubscription, deliver func(*ws.ProgramResult)) {
	h := &handle{id: uuid.New().String(), name: name, sub: sub}
	l.handles = append(l.handles, h)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			result, err := sub.Recv()
			if err != nil {
				if ctx.Err() == nil {
					l.logger.Error("Subscription receive failed",
						zap.String("subscription", name),
						zap.Error(err))
				}
				return
			}
			if result != nil {
				deliver(result)
			}
		}
	}()
}

func (l *Listeners) emitPool(ev PoolEvent) {
	select {
	case l.poolCh <- ev:
	default:
		l.logger.Warn("Pool event channel full, dropping event",
			zap.String("pool", ev.AccountID.String()))
	}
}

func (l *Listeners) emitMarket(ev MarketEvent) {
	select {
	case l.marketCh <- ev:
	default:
		l.logger.Warn("Market event channel full, dropping event",
			zap.String("market", ev.AccountID.String()))
	}
}

func (l *Listeners) emitWallet(ev WalletEvent) {
	select {
	case l.walletCh <- ev:
	default:
		l.logger.Warn("Wallet event channel full, dropping event",
			zap.String("account", ev.AccountID.String()))
	}
}
