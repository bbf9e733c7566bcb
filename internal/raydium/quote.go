// internal/raydium/quote.go
package raydium

import (
	"context"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// PoolReserves holds the live vault balances of a pool.
type PoolReserves struct {
	Base  uint64
	Quote uint64
}

// FetchReserves reads both vault token accounts in a single RPC round trip.
func FetchReserves(ctx context.Context, client *rpc.Client, keys *PoolKeys) (*PoolReserves, error) {
	res, err := client.GetMultipleAccountsWithOpts(
		ctx,
		[]solana.PublicKey{keys.BaseVault, keys.QuoteVault},
		&rpc.GetMultipleAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingBase64,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool vaults: %w", err)
	}
	if len(res.Value) != 2 || res.Value[0] == nil || res.Value[1] == nil {
		return nil, fmt.Errorf("pool vault account missing")
	}

	base, err := decodeTokenAmount(res.Value[0].Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to decode base vault: %w", err)
	}
	quote, err := decodeTokenAmount(res.Value[1].Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to decode quote vault: %w", err)
	}

	return &PoolReserves{Base: base, Quote: quote}, nil
}

func decodeTokenAmount(data []byte) (uint64, error) {
	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// ComputeAmountOut applies the constant-product formula with the pool's swap
// fee and the caller's slippage tolerance (percent). It returns the expected
// output and the minimum acceptable output.
func ComputeAmountOut(reserveIn, reserveOut, amountIn uint64, slippagePct float64) (amountOut, minAmountOut uint64) {
	if reserveIn == 0 || reserveOut == 0 || amountIn == 0 {
		return 0, 0
	}

	feeDen := big.NewInt(swapFeeDenominator)
	inAfterFee := new(big.Int).Mul(
		new(big.Int).SetUint64(amountIn),
		big.NewInt(swapFeeDenominator-swapFeeNumerator),
	)

	num := new(big.Int).Mul(new(big.Int).SetUint64(reserveOut), inAfterFee)
	den := new(big.Int).Add(
		new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), feeDen),
		inAfterFee,
	)
	out := new(big.Int).Quo(num, den)

	slipBps := int64(slippagePct * 100)
	if slipBps < 0 {
		slipBps = 0
	}
	if slipBps > 10000 {
		slipBps = 10000
	}
	minOut := new(big.Int).Quo(
		new(big.Int).Mul(out, big.NewInt(10000-slipBps)),
		big.NewInt(10000),
	)

	return out.Uint64(), minOut.Uint64()
}
