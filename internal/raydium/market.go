// internal/raydium/market.go
package raydium

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MarketStateV3 is the OpenBook market account referenced by classical pools.
type MarketStateV3 struct {
	AccountFlags     uint64
	OwnAddress       solana.PublicKey
	VaultSignerNonce uint64

	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey

	BaseVault         solana.PublicKey
	BaseDepositsTotal uint64
	BaseFeesAccrued   uint64

	QuoteVault         solana.PublicKey
	QuoteDepositsTotal uint64
	QuoteFeesAccrued   uint64
	QuoteDustThreshold uint64

	RequestQueue solana.PublicKey
	EventQueue   solana.PublicKey
	Bids         solana.PublicKey
	Asks         solana.PublicKey

	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
}

// DecodeMarketStateV3 decodes the 388-byte OpenBook market account. The layout
// carries a 5-byte "serum" prefix and a 7-byte tail.
func DecodeMarketStateV3(data []byte) (*MarketStateV3, error) {
	if len(data) < MarketStateV3Size {
		return nil, fmt.Errorf("insufficient data length: got %d, need %d", len(data), MarketStateV3Size)
	}

	dec := bin.NewBinDecoder(data)
	if err := dec.SkipBytes(5); err != nil {
		return nil, fmt.Errorf("failed to skip header: %w", err)
	}

	s := &MarketStateV3{}
	readU64 := func(dst *uint64, name string) error {
		v, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		*dst = v
		return nil
	}
	readKey := func(dst *solana.PublicKey, name string) error {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		*dst = solana.PublicKeyFromBytes(raw)
		return nil
	}

	steps := []func() error{
		func() error { return readU64(&s.AccountFlags, "account flags") },
		func() error { return readKey(&s.OwnAddress, "own address") },
		func() error { return readU64(&s.VaultSignerNonce, "vault signer nonce") },
		func() error { return readKey(&s.BaseMint, "base mint") },
		func() error { return readKey(&s.QuoteMint, "quote mint") },
		func() error { return readKey(&s.BaseVault, "base vault") },
		func() error { return readU64(&s.BaseDepositsTotal, "base deposits") },
		func() error { return readU64(&s.BaseFeesAccrued, "base fees") },
		func() error { return readKey(&s.QuoteVault, "quote vault") },
		func() error { return readU64(&s.QuoteDepositsTotal, "quote deposits") },
		func() error { return readU64(&s.QuoteFeesAccrued, "quote fees") },
		func() error { return readU64(&s.QuoteDustThreshold, "dust threshold") },
		func() error { return readKey(&s.RequestQueue, "request queue") },
		func() error { return readKey(&s.EventQueue, "event queue") },
		func() error { return readKey(&s.Bids, "bids") },
		func() error { return readKey(&s.Asks, "asks") },
		func() error { return readU64(&s.BaseLotSize, "base lot size") },
		func() error { return readU64(&s.QuoteLotSize, "quote lot size") },
		func() error { return readU64(&s.FeeRateBps, "fee rate") },
		func() error { return readU64(&s.ReferrerRebatesAccrued, "referrer rebates") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	return s, nil
}
