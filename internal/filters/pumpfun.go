// internal/filters/pumpfun.go
package filters

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// Update authority pump.fun stamps on tokens it launches.
var pumpFunAuthority = solana.MustPublicKeyFromBase58("TSLvdd1pWpHVjahSpsvCXUbgwsL3JAcvokwaKt1eokM")

// PumpFunFilter accepts only tokens that graduated from pump.fun: the
// metadata URI mentions pump.fun, or the mint carries the vanity "pump"
// suffix, or the metadata update authority is the pump.fun authority.
type PumpFunFilter struct {
	conns *netpool.Pool
}

func (f *PumpFunFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult {
	if strings.HasSuffix(keys.BaseMint.String(), "pump") {
		return FilterResult{OK: true}
	}

	metadataAddr, err := metadataAddress(keys.BaseMint)
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("pump.fun check failed: %v", err)}
	}

	conn := f.conns.GetConnection()
	info, err := conn.RPC.GetAccountInfoWithOpts(ctx, metadataAddr, &rpc.GetAccountInfoOpts{
		Commitment: conn.Commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("pump.fun check failed: %v", err)}
	}
	if info.Value == nil {
		return FilterResult{Message: "pump.fun check failed: metadata account missing"}
	}

	meta, err := decodeTokenMetadata(info.Value.Data.GetBinary())
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("pump.fun check failed: %v", err)}
	}

	if strings.Contains(meta.URI, "pump.fun") || meta.UpdateAuthority.Equals(pumpFunAuthority) {
		return FilterResult{OK: true}
	}
	return FilterResult{Message: fmt.Sprintf("token %s did not originate from pump.fun", keys.BaseMint)}
}

// metadataAddress derives the metaplex metadata PDA of mint.
func metadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			solana.TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		solana.TokenMetadataProgramID,
	)
	return addr, err
}
