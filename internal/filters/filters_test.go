// internal/filters/filters_test.go
package filters

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-sniper/internal/config"
	"github.com/rovshanmuradov/solana-sniper/internal/raydium"
)

type stubFilter struct {
	result FilterResult
	calls  atomic.Int32
}

func (s *stubFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) FilterResult {
	s.calls.Add(1)
	return s.result
}

func TestEngineDisabledWithoutToggles(t *testing.T) {
	engine := NewEngine(nil, &config.Config{}, zaptest.NewLogger(t))

	assert.False(t, engine.Enabled())
	assert.True(t, engine.Execute(context.Background(), &raydium.PoolKeys{}))
}

func TestEngineAllPass(t *testing.T) {
	a := &stubFilter{result: FilterResult{OK: true}}
	b := &stubFilter{result: FilterResult{OK: true}}
	engine := &Engine{filters: []PoolFilter{a, b}, logger: zaptest.NewLogger(t)}

	assert.True(t, engine.Execute(context.Background(), &raydium.PoolKeys{}))
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestEngineSingleFailureRejects(t *testing.T) {
	a := &stubFilter{result: FilterResult{OK: true}}
	b := &stubFilter{result: FilterResult{Message: "pool size 1 below min 5"}}
	engine := &Engine{filters: []PoolFilter{a, b}, logger: zaptest.NewLogger(t)}

	assert.False(t, engine.Execute(context.Background(), &raydium.PoolKeys{}))
	// Every filter still ran.
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestNewEngineBuildsFromToggles(t *testing.T) {
	cfg := &config.Config{
		CheckBurned:      true,
		CheckRenounced:   true,
		CheckFromPumpFun: true,
	}
	engine := NewEngine(nil, cfg, zaptest.NewLogger(t))

	assert.True(t, engine.Enabled())
	assert.Len(t, engine.filters, 3)
}

func metadataString(s string, padded int) []byte {
	out := make([]byte, 4+padded)
	binary.LittleEndian.PutUint32(out, uint32(padded))
	copy(out[4:], s)
	return out
}

func TestDecodeTokenMetadata(t *testing.T) {
	authority, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mint, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	data := []byte{4} // metadata key
	data = append(data, authority.PublicKey().Bytes()...)
	data = append(data, mint.PublicKey().Bytes()...)
	data = append(data, metadataString("Good Coin", 32)...)
	data = append(data, metadataString("GOOD", 10)...)
	data = append(data, metadataString("https://pump.fun/meta.json", 200)...)

	meta, err := decodeTokenMetadata(data)
	require.NoError(t, err)

	assert.Equal(t, authority.PublicKey(), meta.UpdateAuthority)
	assert.Equal(t, mint.PublicKey(), meta.Mint)
	assert.Equal(t, "Good Coin", meta.Name)
	assert.Equal(t, "GOOD", meta.Symbol)
	assert.Equal(t, "https://pump.fun/meta.json", meta.URI)
}

func TestDecodeTokenMetadataTruncated(t *testing.T) {
	_, err := decodeTokenMetadata([]byte{4, 1, 2})
	require.Error(t, err)
}
