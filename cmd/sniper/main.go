// cmd/sniper/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/bot"
	"github.com/rovshanmuradov/solana-sniper/internal/config"
	"github.com/rovshanmuradov/solana-sniper/internal/executor"
	"github.com/rovshanmuradov/solana-sniper/internal/filters"
	"github.com/rovshanmuradov/solana-sniper/internal/listcache"
	"github.com/rovshanmuradov/solana-sniper/internal/listeners"
	"github.com/rovshanmuradov/solana-sniper/internal/logger"
	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/storage"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (env vars win)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:    cfg.LogFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
		Debug:      cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Sniper failed", zap.Error(err))
		syncLogger(log)
		os.Exit(1)
	}
	syncLogger(log)
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	conns, err := netpool.New(cfg.RPCEndpoints, cfg.WSEndpoints, cfg.Commitment, log)
	if err != nil {
		return fmt.Errorf("failed to build endpoint pool: %w", err)
	}

	w, err := wallet.Load(cfg.WalletSecret)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}

	var snipeList, avoidList *listcache.Cache
	if cfg.UseSnipeList {
		if snipeList, err = listcache.New(cfg.SnipeListPath, log); err != nil {
			return fmt.Errorf("failed to load snipe list: %w", err)
		}
		defer snipeList.Close()
	}
	if cfg.UseAvoidList {
		if avoidList, err = listcache.New(cfg.AvoidListPath, log); err != nil {
			return fmt.Errorf("failed to load avoid list: %w", err)
		}
		defer avoidList.Close()
	}

	exec := buildExecutor(cfg, conns, log)
	markets := storage.NewMarketCache(conns, log)
	pools := storage.NewPoolCache(log)
	engine := filters.NewEngine(conns, cfg, log)

	trader, err := bot.New(&bot.Options{
		Config:    cfg,
		Conns:     conns,
		Wallet:    w,
		Executor:  exec,
		Filters:   engine,
		Markets:   markets,
		Pools:     pools,
		SnipeList: snipeList,
		AvoidList: avoidList,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	lst := listeners.New(conns, log)
	err = lst.Start(ctx, &listeners.Config{
		QuoteMint:        cfg.QuoteMint,
		WalletPublicKey:  w.PublicKey,
		SubscribeMarkets: cfg.CacheNewMarkets,
		SubscribeCpmm:    cfg.Devnet,
		SubscribeWallet:  cfg.AutoSell,
		Devnet:           cfg.Devnet,
	})
	if err != nil {
		return fmt.Errorf("failed to start subscriptions: %w", err)
	}
	defer lst.Stop()

	log.Info("🤖 Sniper started",
		zap.String("wallet", w.PublicKey.String()),
		zap.String("quote_mint", cfg.QuoteMint.String()),
		zap.String("quote_amount", cfg.QuoteAmount.String()),
		zap.String("executor", string(cfg.ExecutorMode)),
		zap.Bool("auto_sell", cfg.AutoSell),
		zap.Bool("one_token_at_a_time", cfg.OneTokenAtATime))

	go dispatch(ctx, lst, trader, markets, pools)

	<-ctx.Done()
	log.Info("👋 Sniper shutting down gracefully")
	return nil
}

// dispatch fans subscription events into the coordinator. Handlers run in
// their own goroutines; the coordinator serializes where configured.
func dispatch(ctx context.Context, lst *listeners.Listeners, trader *bot.Bot, markets *storage.MarketCache, pools *storage.PoolCache) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-lst.Pools():
			pools.Save(ev.AccountID, ev.State)
			go trader.HandleNewPool(ctx, ev, lst)
		case ev := <-lst.Markets():
			markets.Save(ev.AccountID, ev.State)
		case ev := <-lst.Wallet():
			go trader.HandleWalletChange(ctx, ev, lst)
		}
	}
}

func buildExecutor(cfg *config.Config, conns *netpool.Pool, log *zap.Logger) executor.TransactionExecutor {
	switch cfg.ExecutorMode {
	case config.ExecutorWarp:
		feeLamports := cfg.WarpFee.Shift(9).BigInt().Uint64()
		return executor.NewWarpExecutor(conns, cfg.WarpEndpoint, feeLamports, log)
	case config.ExecutorBundle:
		return executor.NewBundleExecutor(conns, cfg.BundleEndpoint, cfg.BundleTip, log)
	default:
		return executor.NewDefaultExecutor(conns, log)
	}
}

func syncLogger(log *zap.Logger) {
	if err := log.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
}
