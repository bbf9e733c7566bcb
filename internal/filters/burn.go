// internal/filters/burn.go
package filters

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// BurnFilter requires the LP mint supply to be zero, i.e. the creator burnt
// the liquidity tokens.
type BurnFilter struct {
	conns *netpool.Pool
}

func (f *BurnFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult {
	conn := f.conns.GetConnection()

	supply, err := conn.RPC.GetTokenSupply(ctx, keys.LpMint, conn.Commitment)
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("burned check failed: %v", err)}
	}
	if supply.Value == nil {
		return FilterResult{Message: "burned check failed: empty supply response"}
	}
	if supply.Value.Amount != "0" {
		return FilterResult{Message: fmt.Sprintf("liquidity not burnt, lp supply %s", supply.Value.Amount)}
	}
	return FilterResult{OK: true}
}
