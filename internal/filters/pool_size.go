// internal/filters/pool_size.go
package filters

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// PoolSizeFilter bounds the quote vault balance, in quote units. A zero bound
// leaves that side open.
type PoolSizeFilter struct {
	conns *netpool.Pool
	min   decimal.Decimal
	max   decimal.Decimal
}

func (f *PoolSizeFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult {
	conn := f.conns.GetConnection()

	balance, err := conn.RPC.GetTokenAccountBalance(ctx, keys.QuoteVault, conn.Commitment)
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("pool size check failed: %v", err)}
	}
	if balance.Value == nil {
		return FilterResult{Message: "pool size check failed: empty balance response"}
	}

	size, err := decimal.NewFromString(balance.Value.UiAmountString)
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("pool size check failed: %v", err)}
	}

	if f.max.IsPositive() && size.GreaterThan(f.max) {
		return FilterResult{Message: fmt.Sprintf("pool size %s above max %s", size, f.max)}
	}
	if f.min.IsPositive() && size.LessThan(f.min) {
		return FilterResult{Message: fmt.Sprintf("pool size %s below min %s", size, f.min)}
	}
	return FilterResult{OK: true}
}
