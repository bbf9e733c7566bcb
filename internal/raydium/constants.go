// internal/raydium/constants.go
package raydium

import "github.com/gagliardetto/solana-go"

// Program addresses for the classical AMM, the OpenBook order book and the
// constant-product (CPMM) variant.
var (
	AmmV4Program      = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OpenBookProgram   = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	CpmmProgram       = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	CpmmProgramDevnet = solana.MustPublicKeyFromBase58("CPMDWBwJDtYax9qW7AyRuVC19Cc4L4Vcy4n2BHAbHkCW")
)

// Account layout sizes used in subscription filters.
const (
	LiquidityStateV4Size = 752
	MarketStateV3Size    = 388
	CpmmPoolStateSize    = 637
	TokenAccountSize     = 165
)

// Byte offsets inside the raw account layouts, for memcmp subscription filters.
const (
	LiquidityStatusOffset        = 0
	LiquidityQuoteMintOffset     = 432
	LiquidityMarketProgramOffset = 560
	MarketQuoteMintOffset        = 85
	TokenAccountOwnerOffset      = 32
)

// PoolStatusSwapOnly is the little-endian status value of a pool that is open
// for swaps. New listings flip to this status at pool creation.
var PoolStatusSwapOnly = []byte{6, 0, 0, 0, 0, 0, 0, 0}

// Swap fee of the classical AMM, in basis points of 10000.
const (
	swapFeeNumerator   = 25
	swapFeeDenominator = 10000
)
