// internal/raydium/instruction.go
package raydium

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Instruction tag of the fixed-input swap.
const instructionSwapBaseIn = 9

// MakeSwapInstruction builds the classical AMM swap instruction. The account
// order is fixed by the program.
func MakeSwapInstruction(
	keys *PoolKeys,
	userSource solana.PublicKey,
	userDestination solana.PublicKey,
	owner solana.PublicKey,
	amountIn uint64,
	minAmountOut uint64,
) solana.Instruction {
	data := make([]byte, 17)
	data[0] = instructionSwapBaseIn
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	accounts := solana.AccountMetaSlice{
		solana.Meta(solana.TokenProgramID),
		solana.Meta(keys.ID).WRITE(),
		solana.Meta(keys.Authority),
		solana.Meta(keys.OpenOrders).WRITE(),
		solana.Meta(keys.TargetOrders).WRITE(),
		solana.Meta(keys.BaseVault).WRITE(),
		solana.Meta(keys.QuoteVault).WRITE(),
		solana.Meta(keys.MarketProgramID),
		solana.Meta(keys.MarketID).WRITE(),
		solana.Meta(keys.MarketBids).WRITE(),
		solana.Meta(keys.MarketAsks).WRITE(),
		solana.Meta(keys.MarketEventQueue).WRITE(),
		solana.Meta(keys.MarketBaseVault).WRITE(),
		solana.Meta(keys.MarketQuoteVault).WRITE(),
		solana.Meta(keys.MarketAuthority),
		solana.Meta(userSource).WRITE(),
		solana.Meta(userDestination).WRITE(),
		solana.Meta(owner).SIGNER().WRITE(),
	}

	return solana.NewInstruction(AmmV4Program, accounts, data)
}
