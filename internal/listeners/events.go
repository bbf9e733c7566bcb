// internal/listeners/events.go
package listeners

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// PoolEvent is a newly observed liquidity pool. CPMM pools arrive normalized
// into the classical layout with IsCpmm set and a zero market id.
type PoolEvent struct {
	AccountID solana.PublicKey
	State     *raydium.LiquidityStateV4
	IsCpmm    bool
}

// MarketEvent is a newly observed order-book market.
type MarketEvent struct {
	AccountID solana.PublicKey
	State     *raydium.MarketStateV3
}

// WalletEvent is a token-account change of the trading wallet.
type WalletEvent struct {
	AccountID solana.PublicKey
	Account   *token.Account
}

func decodeTokenAccount(data []byte) (*token.Account, error) {
	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
