// internal/storage/pools.go
package storage

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// PoolRecord is a pool descriptor indexed by its base mint.
type PoolRecord struct {
	ID    solana.PublicKey
	State *raydium.LiquidityStateV4
}

// PoolCache maps base mints to the pool we saw them launch in. Entries are
// immutable once saved and live for the process lifetime.
type PoolCache struct {
	mu     sync.RWMutex
	pools  map[solana.PublicKey]*PoolRecord
	logger *zap.Logger
}

func NewPoolCache(logger *zap.Logger) *PoolCache {
	return &PoolCache{
		pools:  make(map[solana.PublicKey]*PoolRecord),
		logger: logger.Named("pool-cache"),
	}
}

// Save stores the pool for its base mint. The first sighting wins.
func (c *PoolCache) Save(id solana.PublicKey, state *raydium.LiquidityStateV4) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pools[state.BaseMint]; ok {
		return
	}
	c.pools[state.BaseMint] = &PoolRecord{ID: id, State: state}
	c.logger.Debug("Pool cached",
		zap.String("pool", id.String()),
		zap.String("mint", state.BaseMint.String()))
}

// Get returns the pool descriptor for mint.
func (c *PoolCache) Get(mint solana.PublicKey) (*PoolRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.pools[mint]
	return rec, ok
}
