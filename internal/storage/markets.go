// internal/storage/markets.go
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// MarketCache maps market ids to decoded market state. Misses fall back to a
// direct on-chain fetch; the result is cached.
type MarketCache struct {
	mu      sync.RWMutex
	markets map[solana.PublicKey]*raydium.MarketStateV3

	conns  *netpool.Pool
	logger *zap.Logger
}

func NewMarketCache(conns *netpool.Pool, logger *zap.Logger) *MarketCache {
	return &MarketCache{
		markets: make(map[solana.PublicKey]*raydium.MarketStateV3),
		conns:   conns,
		logger:  logger.Named("market-cache"),
	}
}

// Save stores a market descriptor. Existing entries stay as they are.
func (c *MarketCache) Save(id solana.PublicKey, state *raydium.MarketStateV3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.markets[id]; ok {
		return
	}
	c.markets[id] = state
	c.logger.Debug("Market cached", zap.String("market", id.String()))
}

// Get returns the cached market, fetching and decoding it on a miss.
func (c *MarketCache) Get(ctx context.Context, id solana.PublicKey) (*raydium.MarketStateV3, error) {
	c.mu.RLock()
	state, ok := c.markets[id]
	c.mu.RUnlock()
	if ok {
		return state, nil
	}

	conn := c.conns.GetConnection()
	info, err := conn.RPC.GetAccountInfoWithOpts(ctx, id, &rpc.GetAccountInfoOpts{
		Commitment: conn.Commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market %s: %w", id, err)
	}
	if info.Value == nil {
		return nil, fmt.Errorf("market %s not found", id)
	}

	state, err = raydium.DecodeMarketStateV3(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to decode market %s: %w", id, err)
	}

	c.Save(id, state)
	return state, nil
}
