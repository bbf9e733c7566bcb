// internal/netpool/pool.go
package netpool

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Fallback endpoint used when every configured endpoint is misbehaving.
const (
	fallbackRPCURL = "https://api.mainnet-beta.solana.com"
	fallbackWSURL  = "wss://api.mainnet-beta.solana.com"
)

// Connection bundles the RPC client with the matching websocket endpoint.
type Connection struct {
	RPC        *rpc.Client
	RPCURL     string
	WSURL      string
	Commitment rpc.CommitmentType

	// Index is the position in the configured endpoint list, -1 for the fallback.
	Index int
}

// Pool holds the configured endpoints and the current selection. Selection never
// fails over on its own; it changes only when Refresh or Fallback is called. The
// trade coordinator's retry loops call neither, so retries reuse the current endpoint.
type Pool struct {
	mu      sync.Mutex
	conns   []*Connection
	current *Connection
	last    int
	logger  *zap.Logger
}

// New builds a pool from matching RPC and websocket endpoint lists.
func New(rpcURLs, wsURLs []string, commitment rpc.CommitmentType, logger *zap.Logger) (*Pool, error) {
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("empty endpoint list")
	}
	if len(rpcURLs) != len(wsURLs) {
		return nil, fmt.Errorf("endpoint count mismatch: %d rpc vs %d ws", len(rpcURLs), len(wsURLs))
	}

	conns := make([]*Connection, len(rpcURLs))
	for i, url := range rpcURLs {
		conns[i] = &Connection{
			RPC:        rpc.New(url),
			RPCURL:     url,
			WSURL:      wsURLs[i],
			Commitment: commitment,
			Index:      i,
		}
	}

	return &Pool{
		conns:  conns,
		last:   -1,
		logger: logger.Named("netpool"),
	}, nil
}

// GetConnection returns the current selection, picking the first endpoint on
// first use.
func (p *Pool) GetConnection() *Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		p.current = p.conns[0]
		p.last = 0
	}
	return p.current
}

// Refresh selects a uniformly random endpoint different from the last-used one
// and makes it current. With a single endpoint it stays put.
func (p *Pool) Refresh() *Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.conns) == 1 {
		p.current = p.conns[0]
		p.last = 0
		return p.current
	}

	next := rand.Intn(len(p.conns))
	for next == p.last {
		next = rand.Intn(len(p.conns))
	}

	p.last = next
	p.current = p.conns[next]
	p.logger.Debug("Switched RPC endpoint",
		zap.Int("index", next),
		zap.String("rpc", p.current.RPCURL))
	return p.current
}

// Fallback replaces the current selection with the public default endpoint.
func (p *Pool) Fallback() *Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Warn("Falling back to public RPC endpoint",
		zap.String("rpc", fallbackRPCURL))

	p.current = &Connection{
		RPC:        rpc.New(fallbackRPCURL),
		RPCURL:     fallbackRPCURL,
		WSURL:      fallbackWSURL,
		Commitment: rpc.CommitmentConfirmed,
		Index:      -1,
	}
	return p.current
}

// Size returns the number of configured endpoints.
func (p *Pool) Size() int {
	return len(p.conns)
}
