// internal/netpool/pool_test.go
package netpool

import (
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestPool(t *testing.T, n int) *Pool {
	t.Helper()
	var rpcURLs, wsURLs []string
	for i := 0; i < n; i++ {
		rpcURLs = append(rpcURLs, "https://rpc.example/"+string(rune('a'+i)))
		wsURLs = append(wsURLs, "wss://ws.example/"+string(rune('a'+i)))
	}
	p, err := New(rpcURLs, wsURLs, rpc.CommitmentConfirmed, zaptest.NewLogger(t))
	require.NoError(t, err)
	return p
}

func TestNewRejectsMismatchedLists(t *testing.T) {
	_, err := New(
		[]string{"https://a", "https://b"},
		[]string{"wss://a"},
		rpc.CommitmentConfirmed,
		zaptest.NewLogger(t),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestNewRejectsEmptyList(t *testing.T) {
	_, err := New(nil, nil, rpc.CommitmentConfirmed, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestGetConnectionSelectsFirst(t *testing.T) {
	p := newTestPool(t, 3)

	conn := p.GetConnection()
	assert.Equal(t, 0, conn.Index)
	// Stable until a refresh.
	assert.Equal(t, 0, p.GetConnection().Index)
}

func TestRefreshNeverRepeatsIndex(t *testing.T) {
	p := newTestPool(t, 3)
	last := p.GetConnection().Index

	for i := 0; i < 200; i++ {
		conn := p.Refresh()
		assert.NotEqual(t, last, conn.Index, "adjacent refreshes returned the same index")
		assert.GreaterOrEqual(t, conn.Index, 0)
		assert.Less(t, conn.Index, 3)
		last = conn.Index
	}
}

func TestRefreshSingleEndpoint(t *testing.T) {
	p := newTestPool(t, 1)

	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, p.Refresh().Index)
	}
}

func TestFallbackReplacesSelection(t *testing.T) {
	p := newTestPool(t, 2)

	conn := p.Fallback()
	assert.Equal(t, -1, conn.Index)
	assert.Equal(t, fallbackRPCURL, conn.RPCURL)
	assert.Equal(t, conn, p.GetConnection())
}
