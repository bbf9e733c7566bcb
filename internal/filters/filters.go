// internal/filters/filters.go
package filters

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-sniper/internal/config"
	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// FilterResult is one filter's verdict on a candidate pool.
type FilterResult struct {
	OK      bool
	Message string
}

// PoolFilter is a single eligibility check against a candidate pool.
type PoolFilter interface {
	Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult
}

// Engine evaluates the configured filters against a pool. All filters run
// concurrently; the pool passes only when every filter approves.
type Engine struct {
	filters []PoolFilter
	logger  *zap.Logger
}

// NewEngine assembles the filter set from the boolean config toggles.
func NewEngine(conns *netpool.Pool, cfg *config.Config, logger *zap.Logger) *Engine {
	log := logger.Named("filters")

	var fs []PoolFilter
	if cfg.CheckBurned {
		fs = append(fs, &BurnFilter{conns: conns})
	}
	if cfg.CheckRenounced || cfg.CheckFreezable {
		fs = append(fs, &MintAuthorityFilter{
			conns:          conns,
			checkRenounced: cfg.CheckRenounced,
			checkFreezable: cfg.CheckFreezable,
		})
	}
	if cfg.MinPoolSize.IsPositive() || cfg.MaxPoolSize.IsPositive() {
		fs = append(fs, &PoolSizeFilter{
			conns: conns,
			min:   cfg.MinPoolSize,
			max:   cfg.MaxPoolSize,
		})
	}
	if cfg.CheckFromPumpFun {
		fs = append(fs, &PumpFunFilter{conns: conns})
	}

	return &Engine{filters: fs, logger: log}
}

// Enabled reports whether any filter is configured.
func (e *Engine) Enabled() bool {
	return len(e.filters) > 0
}

// Execute runs every filter concurrently. With no filters configured it
// approves without any on-chain calls.
func (e *Engine) Execute(ctx context.Context, keys *raydium.PoolKeys) bool {
	if len(e.filters) == 0 {
		return true
	}

	var mu sync.Mutex
	var failures []string

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range e.filters {
		g.Go(func() error {
			res := f.Execute(gctx, keys)
			if !res.OK {
				mu.Lock()
				failures = append(failures, res.Message)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		e.logger.Info("Pool rejected by filters",
			zap.String("mint", keys.BaseMint.String()),
			zap.Strings("reasons", failures))
		return false
	}
	return true
}
