// internal/executor/executor_test.go
package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

func testConns(t *testing.T) *netpool.Pool {
	t.Helper()
	p, err := netpool.New(
		[]string{"https://rpc.invalid"},
		[]string{"wss://rpc.invalid"},
		rpc.CommitmentConfirmed,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	return p
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := wallet.Load(key.String())
	require.NoError(t, err)
	return w
}

func signedTransferTx(t *testing.T, w *wallet.Wallet) *solana.Transaction {
	t.Helper()
	dest, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, w.PublicKey, dest.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)
	require.NoError(t, w.SignTransaction(tx))
	return tx
}

func testBlockhash() *rpc.LatestBlockhashResult {
	return &rpc.LatestBlockhashResult{LastValidBlockHeight: 100}
}

func TestComputeBudgetCapability(t *testing.T) {
	conns := testConns(t)
	log := zaptest.NewLogger(t)

	assert.False(t, NewDefaultExecutor(conns, log).ProvidesComputeBudget())
	assert.True(t, NewWarpExecutor(conns, "https://relay.invalid", 1, log).ProvidesComputeBudget())
	assert.True(t, NewBundleExecutor(conns, "https://relay.invalid", 1, log).ProvidesComputeBudget())
}

func TestWarpRelayErrorReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"error": "simulation failed"}`))
	}))
	defer server.Close()

	w := testWallet(t)
	exec := NewWarpExecutor(testConns(t), server.URL, 1000, zaptest.NewLogger(t))

	result, err := exec.ExecuteAndConfirm(context.Background(), signedTransferTx(t, w), w, testBlockhash())
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.Equal(t, "simulation failed", result.Error)
}

func TestWarpRelayMissingSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	w := testWallet(t)
	exec := NewWarpExecutor(testConns(t), server.URL, 1000, zaptest.NewLogger(t))

	result, err := exec.ExecuteAndConfirm(context.Background(), signedTransferTx(t, w), w, testBlockhash())
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.Contains(t, result.Error, "no signature")
}

func TestWarpRelayUnreachable(t *testing.T) {
	w := testWallet(t)
	exec := NewWarpExecutor(testConns(t), "http://127.0.0.1:1", 1000, zaptest.NewLogger(t))

	_, err := exec.ExecuteAndConfirm(context.Background(), signedTransferTx(t, w), w, testBlockhash())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
}

func TestBundleRelayErrorReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "bundle rejected"}}`))
	}))
	defer server.Close()

	w := testWallet(t)
	exec := NewBundleExecutor(testConns(t), server.URL, 1000, zaptest.NewLogger(t))

	result, err := exec.ExecuteAndConfirm(context.Background(), signedTransferTx(t, w), w, testBlockhash())
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.Contains(t, result.Error, "bundle rejected")
}

func TestBundleRejectsUnsignedTransaction(t *testing.T) {
	w := testWallet(t)
	dest, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, w.PublicKey, dest.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	exec := NewBundleExecutor(testConns(t), "http://127.0.0.1:1", 1000, zaptest.NewLogger(t))
	_, err = exec.ExecuteAndConfirm(context.Background(), tx, w, testBlockhash())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
}
