// internal/executor/bundle.go
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-sniper/internal/netpool"
	"github.com/rovshanmuradov/solana-sniper/internal/wallet"
)

// Well-known tip recipients of the bundle relay.
var tipAccounts = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4bVNa1xJZmCkrhGnVw6nNYS",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}

const (
	bundlePollInterval = 400 * time.Millisecond
	bundlePollTimeout  = 30 * time.Second
)

// BundleExecutor attaches a tip transfer and submits the pair as a bundle.
// Inclusion is awaited by polling for the user signature. Like the warp
// relay, the bundle path owns the compute budget.
type BundleExecutor struct {
	conns       *netpool.Pool
	endpoint    string
	tipLamports uint64
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewBundleExecutor(conns *netpool.Pool, endpoint string, tipLamports uint64, logger *zap.Logger) *BundleExecutor {
	return &BundleExecutor{
		conns:       conns,
		endpoint:    endpoint,
		tipLamports: tipLamports,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.Named("bundle-executor"),
	}
}

func (e *BundleExecutor) ProvidesComputeBudget() bool { return true }

type bundleRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type bundleResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *BundleExecutor) ExecuteAndConfirm(
	ctx context.Context,
	tx *solana.Transaction,
	payer *wallet.Wallet,
	blockhash *rpc.LatestBlockhashResult,
) (*SubmissionResult, error) {
	tipAccount := solana.MustPublicKeyFromBase58(tipAccounts[rand.Intn(len(tipAccounts))])

	tipTx, err := e.buildTipTransaction(payer, tipAccount, blockhash.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	userB64, err := encodeTransaction(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	tipB64, err := encodeTransaction(tipTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	if len(tx.Signatures) == 0 {
		return nil, fmt.Errorf("%w: user transaction is unsigned", ErrSubmission)
	}
	userSig := tx.Signatures[0]

	body, err := json.Marshal(bundleRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "sendBundle",
		Params: []interface{}{
			[]string{userB64, tipB64},
			map[string]string{"encoding": "base64"},
		},
	})
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

	var relay bundleResponse
	if err := json.NewDecoder(resp.Body).Decode(&relay); err != nil {
		return nil, fmt.Errorf("%w: bad relay response: %v", ErrSubmission, err)
	}
	if relay.Error != nil {
		logSimulationError(e.logger, fmt.Errorf("%s", relay.Error.Message))
		return &SubmissionResult{Error: relay.Error.Message}, nil
	}

	e.logger.Debug("Bundle submitted",
		zap.String("bundle_id", relay.Result),
		zap.String("signature", userSig.String()),
		zap.String("tip_account", tipAccount.String()))

	return e.pollForSignature(ctx, userSig)
}

func (e *BundleExecutor) buildTipTransaction(payer *wallet.Wallet, tipAccount solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	transfer := system.NewTransferInstruction(
		e.tipLamports,
		payer.PublicKey,
		tipAccount,
	).Build()

	tipTx, err := solana.NewTransaction(
		[]solana.Instruction{transfer},
		blockhash,
		solana.TransactionPayer(payer.PublicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tip transaction: %w", err)
	}
	if err := payer.SignTransaction(tipTx); err != nil {
		return nil, fmt.Errorf("failed to sign tip transaction: %w", err)
	}
	return tipTx, nil
}

// pollForSignature waits for the bundled user transaction to land.
func (e *BundleExecutor) pollForSignature(ctx context.Context, sig solana.Signature) (*SubmissionResult, error) {
	conn := e.conns.GetConnection()
	deadline := time.Now().Add(bundlePollTimeout)
	ticker := time.NewTicker(bundlePollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		statuses, err := conn.RPC.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			e.logger.Debug("Signature status fetch failed", zap.Error(err))
			continue
		}
		if len(statuses.Value) == 0 || statuses.Value[0] == nil {
			continue
		}
		status := statuses.Value[0]
		if status.Err != nil {
			return &SubmissionResult{
				Signature: sig.String(),
				Error:     fmt.Sprintf("bundle transaction failed: %v", status.Err),
			}, nil
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return &SubmissionResult{Confirmed: true, Signature: sig.String()}, nil
		}
	}

	return &SubmissionResult{
		Signature: sig.String(),
		Error:     "bundle not included before timeout",
	}, nil
}
