// internal/executor/warp.go
package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

// Service-fee wallet of the warp relay.
var warpFeeWallet = solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5")

// WarpExecutor forwards the user transaction together with a service-fee
// transfer to an external relay. The relay attaches its own compute budget,
// so the user transaction must not carry one.
type WarpExecutor struct {
	conns       *netpool.Pool
	endpoint    string
	feeLamports uint64
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewWarpExecutor(conns *netpool.Pool, endpoint string, feeLamports uint64, logger *zap.Logger) *WarpExecutor {
	return &WarpExecutor{
		conns:       conns,
		endpoint:    endpoint,
		feeLamports: feeLamports,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.Named("warp-executor"),
	}
}

func (e *WarpExecutor) ProvidesComputeBudget() bool { return true }

type warpRequest struct {
	Transactions []string `json:"transactions"`
}

type warpResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error"`
}

func (e *WarpExecutor) ExecuteAndConfirm(
	ctx context.Context,
	tx *solana.Transaction,
	payer *wallet.Wallet,
	blockhash *rpc.LatestBlockhashResult,
) (*SubmissionResult, error) {
	feeTx, err := e.buildFeeTransaction(payer, blockhash.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	userB64, err := encodeTransaction(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	feeB64, err := encodeTransaction(feeTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	body, err := json.Marshal(warpRequest{Transactions: []string{userB64, feeB64}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: relay unreachable: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	var relay warpResponse
	if err := json.NewDecoder(resp.Body).Decode(&relay); err != nil {
		return nil, fmt.Errorf("%w: bad relay response: %v", ErrSubmission, err)
	}
	if relay.Error != "" {
		return &SubmissionResult{Error: relay.Error}, nil
	}
	if relay.Signature == "" {
		return &SubmissionResult{Error: "relay returned no signature"}, nil
	}

	sig, err := solana.SignatureFromBase58(relay.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: bad relay signature: %v", ErrSubmission, err)
	}

	e.logger.Debug("Transaction forwarded to relay",
		zap.String("signature", sig.String()))

	return awaitConfirmation(ctx, e.conns.GetConnection(), sig, blockhash.LastValidBlockHeight, e.logger)
}

func (e *WarpExecutor) buildFeeTransaction(payer *wallet.Wallet, blockhash solana.Hash) (*solana.Transaction, error) {
	transfer := system.NewTransferInstruction(
		e.feeLamports,
		payer.PublicKey,
		warpFeeWallet,
	).Build()

	feeTx, err := solana.NewTransaction(
		[]solana.Instruction{transfer},
		blockhash,
		solana.TransactionPayer(payer.PublicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build fee transaction: %w", err)
	}
	if err := payer.SignTransaction(feeTx); err != nil {
		return nil, fmt.Errorf("failed to sign fee transaction: %w", err)
	}
	return feeTx, nil
}

func encodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
