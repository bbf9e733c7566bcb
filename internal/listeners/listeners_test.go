// internal/listeners/listeners_test.go
package listeners

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
)

func testListeners(t *testing.T) *Listeners {
	t.Helper()
	conns, err := netpool.New(
		[]string{"https://rpc.invalid"},
		[]string{"ws://127.0.0.1:1"},
		rpc.CommitmentConfirmed,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	return New(conns, zaptest.NewLogger(t))
}

func TestStartWithoutConfigFails(t *testing.T) {
	l := testListeners(t)

	err := l.Start(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subscription config")
}

func TestStartUnreachableEndpoint(t *testing.T) {
	l := testListeners(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := l.Start(ctx, &Config{})
	require.Error(t, err)
	assert.Equal(t, 0, l.HandleCount())
}

func TestStopIdempotent(t *testing.T) {
	l := testListeners(t)

	l.Stop()
	l.Stop()
	assert.Equal(t, 0, l.HandleCount())
}

func TestEventChannelsBuffered(t *testing.T) {
	l := testListeners(t)

	// Emission never blocks: overflow beyond the buffer is dropped.
	for i := 0; i < eventBufferSize+10; i++ {
		l.emitPool(PoolEvent{})
	}
	assert.Len(t, l.poolCh, eventBufferSize)

	drained := 0
	for {
		select {
		case <-l.Pools():
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, eventBufferSize, drained)
}
