// internal/raydium/cpmm.go
package raydium

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// CpmmPoolState is the constant-product pool account. CPMM pools have no
// order-book dependency.
type CpmmPoolState struct {
	AmmConfig      solana.PublicKey
	PoolCreator    solana.PublicKey
	Token0Vault    solana.PublicKey
	Token1Vault    solana.PublicKey
	LpMint         solana.PublicKey
	Token0Mint     solana.PublicKey
	Token1Mint     solana.PublicKey
	Token0Program  solana.PublicKey
	Token1Program  solana.PublicKey
	ObservationKey solana.PublicKey

	AuthBump       uint8
	Status         uint8
	LpMintDecimals uint8
	Mint0Decimals  uint8
	Mint1Decimals  uint8

	LpSupply            uint64
	ProtocolFeesToken0  uint64
	ProtocolFeesToken1  uint64
	FundFeesToken0      uint64
	FundFeesToken1      uint64
	OpenTime            uint64
}

// DecodeCpmmPoolState decodes the CPMM pool account (8-byte anchor
// discriminator prefix).
func DecodeCpmmPoolState(data []byte) (*CpmmPoolState, error) {
	if len(data) < CpmmPoolStateSize {
		return nil, fmt.Errorf("insufficient data length: got %d, need %d", len(data), CpmmPoolStateSize)
	}

	dec := bin.NewBinDecoder(data)
	if err := dec.SkipBytes(8); err != nil {
		return nil, fmt.Errorf("failed to skip discriminator: %w", err)
	}

	s := &CpmmPoolState{}
	keyFields := []*solana.PublicKey{
		&s.AmmConfig, &s.PoolCreator, &s.Token0Vault, &s.Token1Vault, &s.LpMint,
		&s.Token0Mint, &s.Token1Mint, &s.Token0Program, &s.Token1Program, &s.ObservationKey,
	}
	for i, field := range keyFields {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, fmt.Errorf("failed to read pubkey field %d: %w", i, err)
		}
		*field = solana.PublicKeyFromBytes(raw)
	}

	u8Fields := []*uint8{&s.AuthBump, &s.Status, &s.LpMintDecimals, &s.Mint0Decimals, &s.Mint1Decimals}
	for i, field := range u8Fields {
		v, err := dec.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("failed to read u8 field %d: %w", i, err)
		}
		*field = v
	}

	u64Fields := []*uint64{
		&s.LpSupply, &s.ProtocolFeesToken0, &s.ProtocolFeesToken1,
		&s.FundFeesToken0, &s.FundFeesToken1, &s.OpenTime,
	}
	for i, field := range u64Fields {
		v, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("failed to read u64 field %d: %w", i, err)
		}
		*field = v
	}

	return s, nil
}

// Normalize maps a CPMM pool onto the classical layout so the rest of the
// pipeline handles one pool shape. Token1 is treated as the quote side when it
// matches quoteMint, otherwise the sides are flipped. The market id stays zero.
func (s *CpmmPoolState) Normalize(quoteMint solana.PublicKey) *LiquidityStateV4 {
	norm := &LiquidityStateV4{
		PoolOpenTime: s.OpenTime,
		LpMint:       s.LpMint,
	}
	if s.Token1Mint.Equals(quoteMint) {
		norm.BaseMint = s.Token0Mint
		norm.QuoteMint = s.Token1Mint
		norm.BaseVault = s.Token0Vault
		norm.QuoteVault = s.Token1Vault
		norm.BaseDecimal = uint64(s.Mint0Decimals)
		norm.QuoteDecimal = uint64(s.Mint1Decimals)
	} else {
		norm.BaseMint = s.Token1Mint
		norm.QuoteMint = s.Token0Mint
		norm.BaseVault = s.Token1Vault
		norm.QuoteVault = s.Token0Vault
		norm.BaseDecimal = uint64(s.Mint1Decimals)
		norm.QuoteDecimal = uint64(s.Mint0Decimals)
	}
	return norm
}
