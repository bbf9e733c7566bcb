// internal/raydium/liquidity.go
package raydium

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// LiquidityStateV4 is the on-chain pool state of the classical AMM.
type LiquidityStateV4 struct {
	Status             uint64
	Nonce              uint64
	MaxOrder           uint64
	Depth              uint64
	BaseDecimal        uint64
	QuoteDecimal       uint64
	State              uint64
	ResetFlag          uint64
	MinSize            uint64
	VolMaxCutRatio     uint64
	AmountWaveRatio    uint64
	BaseLotSize        uint64
	QuoteLotSize       uint64
	MinPriceMultiplier uint64
	MaxPriceMultiplier uint64
	SystemDecimalValue uint64

	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64

	BaseNeedTakePnl     uint64
	QuoteNeedTakePnl    uint64
	QuoteTotalPnl       uint64
	BaseTotalPnl        uint64
	PoolOpenTime        uint64
	PunishPcAmount      uint64
	PunishCoinAmount    uint64
	OrderbookToInitTime uint64

	SwapBaseInAmount   bin.Uint128
	SwapQuoteOutAmount bin.Uint128
	SwapBase2QuoteFee  uint64
	SwapQuoteInAmount  bin.Uint128
	SwapBaseOutAmount  bin.Uint128
	SwapQuote2BaseFee  uint64

	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	BaseMint        solana.PublicKey
	QuoteMint       solana.PublicKey
	LpMint          solana.PublicKey
	OpenOrders      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	LpVault         solana.PublicKey
	Owner           solana.PublicKey

	LpReserve uint64
}

// HasMarket reports whether the pool references an order-book market. CPMM
// pools normalized into this layout carry a zero market id.
func (s *LiquidityStateV4) HasMarket() bool {
	return !s.MarketID.IsZero()
}

// DecodeLiquidityStateV4 decodes the 752-byte AMM pool account.
func DecodeLiquidityStateV4(data []byte) (*LiquidityStateV4, error) {
	if len(data) < LiquidityStateV4Size {
		return nil, fmt.Errorf("insufficient data length: got %d, need %d", len(data), LiquidityStateV4Size)
	}

	dec := bin.NewBinDecoder(data)
	s := &LiquidityStateV4{}

	u64Fields := []*uint64{
		&s.Status, &s.Nonce, &s.MaxOrder, &s.Depth, &s.BaseDecimal, &s.QuoteDecimal,
		&s.State, &s.ResetFlag, &s.MinSize, &s.VolMaxCutRatio, &s.AmountWaveRatio,
		&s.BaseLotSize, &s.QuoteLotSize, &s.MinPriceMultiplier, &s.MaxPriceMultiplier,
		&s.SystemDecimalValue, &s.MinSeparateNumerator, &s.MinSeparateDenominator,
		&s.TradeFeeNumerator, &s.TradeFeeDenominator, &s.PnlNumerator, &s.PnlDenominator,
		&s.SwapFeeNumerator, &s.SwapFeeDenominator, &s.BaseNeedTakePnl, &s.QuoteNeedTakePnl,
		&s.QuoteTotalPnl, &s.BaseTotalPnl, &s.PoolOpenTime, &s.PunishPcAmount,
		&s.PunishCoinAmount, &s.OrderbookToInitTime,
	}
	for i, field := range u64Fields {
		v, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("failed to read u64 field %d: %w", i, err)
		}
		*field = v
	}

	var err error
	if s.SwapBaseInAmount, err = dec.ReadUint128(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read swap base in: %w", err)
	}
	if s.SwapQuoteOutAmount, err = dec.ReadUint128(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read swap quote out: %w", err)
	}
	if s.SwapBase2QuoteFee, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read base2quote fee: %w", err)
	}
	if s.SwapQuoteInAmount, err = dec.ReadUint128(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read swap quote in: %w", err)
	}
	if s.SwapBaseOutAmount, err = dec.ReadUint128(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read swap base out: %w", err)
	}
	if s.SwapQuote2BaseFee, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read quote2base fee: %w", err)
	}

	keyFields := []*solana.PublicKey{
		&s.BaseVault, &s.QuoteVault, &s.BaseMint, &s.QuoteMint, &s.LpMint,
		&s.OpenOrders, &s.MarketID, &s.MarketProgramID, &s.TargetOrders,
		&s.WithdrawQueue, &s.LpVault, &s.Owner,
	}
	for i, field := range keyFields {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, fmt.Errorf("failed to read pubkey field %d: %w", i, err)
		}
		*field = solana.PublicKeyFromBytes(raw)
	}

	if s.LpReserve, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read lp reserve: %w", err)
	}

	return s, nil
}
