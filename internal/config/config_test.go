// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SNIPER_RPC_ENDPOINTS", "https://rpc-1.example|https://rpc-2.example")
	t.Setenv("SNIPER_WS_ENDPOINTS", "wss://ws-1.example|wss://ws-2.example")
	t.Setenv("SNIPER_WALLET_SECRET", "somebase58secret")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SNIPER_COMMITMENT", "processed")
	t.Setenv("SNIPER_QUOTE_AMOUNT", "0.5")
	t.Setenv("SNIPER_AUTO_BUY_DELAY", "250")
	t.Setenv("SNIPER_EXECUTOR_MODE", "bundle")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://rpc-1.example", "https://rpc-2.example"}, cfg.RPCEndpoints)
	assert.Equal(t, []string{"wss://ws-1.example", "wss://ws-2.example"}, cfg.WSEndpoints)
	assert.Equal(t, rpc.CommitmentProcessed, cfg.Commitment)
	assert.Equal(t, solana.WrappedSol, cfg.QuoteMint)
	assert.Equal(t, "0.5", cfg.QuoteAmount.String())
	assert.Equal(t, 250*time.Millisecond, cfg.AutoBuyDelay)
	assert.Equal(t, ExecutorBundle, cfg.ExecutorMode)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, rpc.CommitmentConfirmed, cfg.Commitment)
	assert.Equal(t, ExecutorDefault, cfg.ExecutorMode)
	assert.Equal(t, 10, cfg.MaxBuyRetries)
	assert.Equal(t, 3, cfg.ConsecutiveMatchCount)
	assert.Equal(t, 2*time.Second, cfg.FilterCheckInterval)
	assert.True(t, cfg.OneTokenAtATime)
	assert.True(t, cfg.AutoSell)
}

func TestLoadFromFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"take_profit": 55, "stop_loss": 15, "use_snipe_list": true}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 55.0, cfg.TakeProfit)
	assert.Equal(t, 15.0, cfg.StopLoss)
	assert.True(t, cfg.UseSnipeList)
}

func TestEndpointCountMismatch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SNIPER_WS_ENDPOINTS", "wss://ws-1.example")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestInvalidCommitment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SNIPER_COMMITMENT", "hopeful")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commitment")
}

func TestMissingWalletSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SNIPER_WALLET_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet_secret")
}

func TestInvalidExecutorMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SNIPER_EXECUTOR_MODE", "turbo")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executor_mode")
}
