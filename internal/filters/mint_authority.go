// internal/filters/mint_authority.go
package filters

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

// MintAuthorityFilter inspects the base mint in one fetch: renounced requires
// a null mint authority, freezable rejects a present freeze authority.
type MintAuthorityFilter struct {
	conns          *netpool.Pool
	checkRenounced bool
	checkFreezable bool
}

func (f *MintAuthorityFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult {
	conn := f.conns.GetConnection()

	info, err := conn.RPC.GetAccountInfoWithOpts(ctx, keys.BaseMint, &rpc.GetAccountInfoOpts{
		Commitment: conn.Commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return FilterResult{Message: fmt.Sprintf("mint authority check failed: %v", err)}
	}
	if info.Value == nil {
		return FilterResult{Message: "mint authority check failed: mint account missing"}
	}

	var mint token.Mint
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&mint); err != nil {
		return FilterResult{Message: fmt.Sprintf("mint authority check failed: %v", err)}
	}

	if f.checkRenounced && mint.MintAuthority != nil {
		return FilterResult{Message: "mint authority not renounced"}
	}
	if f.checkFreezable && mint.FreezeAuthority != nil {
		return FilterResult{Message: "token is freezable"}
	}
	return FilterResult{OK: true}
}
