// internal/raydium/pool_keys.go
package raydium

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PoolKeys is the full set of accounts a swap against a classical pool touches.
type PoolKeys struct {
	ID        solana.PublicKey
	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey
	LpMint    solana.PublicKey

	BaseDecimals  uint8
	QuoteDecimals uint8

	Authority    solana.PublicKey
	OpenOrders   solana.PublicKey
	TargetOrders solana.PublicKey
	BaseVault    solana.PublicKey
	QuoteVault   solana.PublicKey

	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketAuthority  solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey
}

// BuildPoolKeys assembles pool keys from the pool state and its market.
func BuildPoolKeys(id solana.PublicKey, state *LiquidityStateV4, market *MarketStateV3) (*PoolKeys, error) {
	authority, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("amm authority")},
		AmmV4Program,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to derive amm authority: %w", err)
	}

	marketAuthority, err := marketVaultSigner(state.MarketID, state.MarketProgramID, market.VaultSignerNonce)
	if err != nil {
		return nil, fmt.Errorf("failed to derive market vault signer: %w", err)
	}

	return &PoolKeys{
		ID:               id,
		BaseMint:         state.BaseMint,
		QuoteMint:        state.QuoteMint,
		LpMint:           state.LpMint,
		BaseDecimals:     uint8(state.BaseDecimal),
		QuoteDecimals:    uint8(state.QuoteDecimal),
		Authority:        authority,
		OpenOrders:       state.OpenOrders,
		TargetOrders:     state.TargetOrders,
		BaseVault:        state.BaseVault,
		QuoteVault:       state.QuoteVault,
		MarketProgramID:  state.MarketProgramID,
		MarketID:         state.MarketID,
		MarketAuthority:  marketAuthority,
		MarketBaseVault:  market.BaseVault,
		MarketQuoteVault: market.QuoteVault,
		MarketBids:       market.Bids,
		MarketAsks:       market.Asks,
		MarketEventQueue: market.EventQueue,
	}, nil
}

// marketVaultSigner derives the market's vault owner from its signer nonce.
func marketVaultSigner(marketID, marketProgram solana.PublicKey, nonce uint64) (solana.PublicKey, error) {
	nonceBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonceBytes, nonce)
	return solana.CreateProgramAddress(
		[][]byte{marketID.Bytes(), nonceBytes},
		marketProgram,
	)
}
