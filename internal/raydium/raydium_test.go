// internal/raydium/raydium_test.go
package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestDecodeLiquidityStateV4(t *testing.T) {
	data := make([]byte, LiquidityStateV4Size)
	binary.LittleEndian.PutUint64(data[0:], 6)    // status
	binary.LittleEndian.PutUint64(data[32:], 6)   // base decimal
	binary.LittleEndian.PutUint64(data[40:], 9)   // quote decimal
	binary.LittleEndian.PutUint64(data[224:], 1720000000) // pool open time

	baseVault := randomKey(t)
	quoteVault := randomKey(t)
	baseMint := randomKey(t)
	quoteMint := solana.WrappedSol
	lpMint := randomKey(t)
	marketID := randomKey(t)

	copy(data[336:], baseVault.Bytes())
	copy(data[368:], quoteVault.Bytes())
	copy(data[400:], baseMint.Bytes())
	copy(data[LiquidityQuoteMintOffset:], quoteMint.Bytes())
	copy(data[464:], lpMint.Bytes())
	copy(data[528:], marketID.Bytes())
	copy(data[LiquidityMarketProgramOffset:], OpenBookProgram.Bytes())
	binary.LittleEndian.PutUint64(data[720:], 42) // lp reserve

	state, err := DecodeLiquidityStateV4(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(6), state.Status)
	assert.Equal(t, uint64(6), state.BaseDecimal)
	assert.Equal(t, uint64(9), state.QuoteDecimal)
	assert.Equal(t, uint64(1720000000), state.PoolOpenTime)
	assert.Equal(t, baseVault, state.BaseVault)
	assert.Equal(t, quoteVault, state.QuoteVault)
	assert.Equal(t, baseMint, state.BaseMint)
	assert.Equal(t, quoteMint, state.QuoteMint)
	assert.Equal(t, lpMint, state.LpMint)
	assert.Equal(t, marketID, state.MarketID)
	assert.Equal(t, OpenBookProgram, state.MarketProgramID)
	assert.Equal(t, uint64(42), state.LpReserve)
	assert.True(t, state.HasMarket())
}

func TestDecodeLiquidityStateV4Short(t *testing.T) {
	_, err := DecodeLiquidityStateV4(make([]byte, 100))
	require.Error(t, err)
}

func TestDecodeMarketStateV3(t *testing.T) {
	data := make([]byte, MarketStateV3Size)
	binary.LittleEndian.PutUint64(data[45:], 3) // vault signer nonce

	ownAddress := randomKey(t)
	quoteMint := solana.WrappedSol
	baseVault := randomKey(t)
	quoteVault := randomKey(t)
	eventQueue := randomKey(t)
	bids := randomKey(t)
	asks := randomKey(t)

	copy(data[13:], ownAddress.Bytes())
	copy(data[MarketQuoteMintOffset:], quoteMint.Bytes())
	copy(data[117:], baseVault.Bytes())
	copy(data[165:], quoteVault.Bytes())
	copy(data[253:], eventQueue.Bytes())
	copy(data[285:], bids.Bytes())
	copy(data[317:], asks.Bytes())

	state, err := DecodeMarketStateV3(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), state.VaultSignerNonce)
	assert.Equal(t, ownAddress, state.OwnAddress)
	assert.Equal(t, quoteMint, state.QuoteMint)
	assert.Equal(t, baseVault, state.BaseVault)
	assert.Equal(t, quoteVault, state.QuoteVault)
	assert.Equal(t, eventQueue, state.EventQueue)
	assert.Equal(t, bids, state.Bids)
	assert.Equal(t, asks, state.Asks)
}

func TestCpmmNormalize(t *testing.T) {
	token0 := randomKey(t)
	vault0 := randomKey(t)
	vault1 := randomKey(t)

	state := &CpmmPoolState{
		Token0Mint:    token0,
		Token1Mint:    solana.WrappedSol,
		Token0Vault:   vault0,
		Token1Vault:   vault1,
		Mint0Decimals: 6,
		Mint1Decimals: 9,
		OpenTime:      123,
	}

	norm := state.Normalize(solana.WrappedSol)
	assert.Equal(t, token0, norm.BaseMint)
	assert.Equal(t, solana.WrappedSol, norm.QuoteMint)
	assert.Equal(t, vault0, norm.BaseVault)
	assert.Equal(t, vault1, norm.QuoteVault)
	assert.Equal(t, uint64(6), norm.BaseDecimal)
	assert.Equal(t, uint64(9), norm.QuoteDecimal)
	assert.False(t, norm.HasMarket())

	// Flipped token order.
	flipped := state.Normalize(token0)
	assert.Equal(t, solana.WrappedSol, flipped.BaseMint)
	assert.Equal(t, vault1, flipped.BaseVault)
}

func TestComputeAmountOut(t *testing.T) {
	out, minOut := ComputeAmountOut(1000, 1000, 100, 10)
	assert.Equal(t, uint64(90), out)
	assert.Equal(t, uint64(81), minOut)

	out, minOut = ComputeAmountOut(1000, 1000, 0, 10)
	assert.Zero(t, out)
	assert.Zero(t, minOut)

	out, minOut = ComputeAmountOut(0, 1000, 100, 10)
	assert.Zero(t, out)
	assert.Zero(t, minOut)

	// No slippage keeps the full expected output.
	out, minOut = ComputeAmountOut(1_000_000, 1_000_000, 1000, 0)
	assert.Equal(t, out, minOut)
}

func TestMakeSwapInstruction(t *testing.T) {
	keys := &PoolKeys{
		ID:               randomKey(t),
		Authority:        randomKey(t),
		OpenOrders:       randomKey(t),
		TargetOrders:     randomKey(t),
		BaseVault:        randomKey(t),
		QuoteVault:       randomKey(t),
		MarketProgramID:  OpenBookProgram,
		MarketID:         randomKey(t),
		MarketAuthority:  randomKey(t),
		MarketBaseVault:  randomKey(t),
		MarketQuoteVault: randomKey(t),
		MarketBids:       randomKey(t),
		MarketAsks:       randomKey(t),
		MarketEventQueue: randomKey(t),
	}
	source := randomKey(t)
	dest := randomKey(t)
	owner := randomKey(t)

	ix := MakeSwapInstruction(keys, source, dest, owner, 5000, 4900)

	assert.Equal(t, AmmV4Program, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, byte(instructionSwapBaseIn), data[0])
	assert.Equal(t, uint64(5000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(4900), binary.LittleEndian.Uint64(data[9:17]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 18)
	assert.Equal(t, solana.TokenProgramID, accounts[0].PublicKey)
	assert.Equal(t, source, accounts[15].PublicKey)
	assert.Equal(t, dest, accounts[16].PublicKey)
	assert.Equal(t, owner, accounts[17].PublicKey)
	assert.True(t, accounts[17].IsSigner)
}

func TestBuildPoolKeys(t *testing.T) {
	marketID := randomKey(t)

	// Find a signer nonce the runtime would have accepted for this market.
	var nonce uint64
	found := false
	for candidate := uint64(0); candidate < 255; candidate++ {
		if _, err := marketVaultSigner(marketID, OpenBookProgram, candidate); err == nil {
			nonce = candidate
			found = true
			break
		}
	}
	require.True(t, found)

	state := &LiquidityStateV4{
		BaseMint:        randomKey(t),
		QuoteMint:       solana.WrappedSol,
		LpMint:          randomKey(t),
		BaseDecimal:     6,
		QuoteDecimal:    9,
		BaseVault:       randomKey(t),
		QuoteVault:      randomKey(t),
		OpenOrders:      randomKey(t),
		TargetOrders:    randomKey(t),
		MarketID:        marketID,
		MarketProgramID: OpenBookProgram,
	}
	market := &MarketStateV3{
		VaultSignerNonce: nonce,
		BaseVault:        randomKey(t),
		QuoteVault:       randomKey(t),
		Bids:             randomKey(t),
		Asks:             randomKey(t),
		EventQueue:       randomKey(t),
	}

	poolID := randomKey(t)
	keys, err := BuildPoolKeys(poolID, state, market)
	require.NoError(t, err)

	expectedAuthority, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("amm authority")}, AmmV4Program)
	require.NoError(t, err)

	assert.Equal(t, poolID, keys.ID)
	assert.Equal(t, expectedAuthority, keys.Authority)
	assert.Equal(t, state.BaseMint, keys.BaseMint)
	assert.Equal(t, uint8(6), keys.BaseDecimals)
	assert.Equal(t, uint8(9), keys.QuoteDecimals)
	assert.Equal(t, market.Bids, keys.MarketBids)
	assert.Equal(t, market.EventQueue, keys.MarketEventQueue)
	assert.False(t, keys.MarketAuthority.IsZero())
}
