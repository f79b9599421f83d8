package mint

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

// Serializer turns a Transaction into the ledger's binary transaction data,
// resolving gas payment and object versions on the way. Wallets and
// transaction builder services provide it.
type Serializer interface {
	Serialize(ctx context.Context, transaction Transaction) ([]byte, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(ctx context.Context, transaction Transaction) ([]byte, error)

func (f SerializerFunc) Serialize(ctx context.Context, transaction Transaction) ([]byte, error) {
	return f(ctx, transaction)
}

// TransactionSigner is satisfied by *signer.Keypair.
type TransactionSigner interface {
	Address() string
	SignTransaction(transactionBytes []byte) (string, error)
}

// Executor is satisfied by *ledger.Client.
type Executor interface {
	ExecuteTransactionBlock(ctx context.Context, transactionBytes string, signatures []string) (ledger.TransactionResponse, error)
	WaitForTransaction(ctx context.Context, digest string, options ledger.WaitOptions) (ledger.TransactionResponse, error)
}

type LedgerSubmitterConfig struct {
	Serializer Serializer
	Signer     TransactionSigner
	Executor   Executor
	Wait       ledger.WaitOptions
	Logger     *zerolog.Logger
}

// LedgerSubmitter serializes, signs, executes and waits for finality.
type LedgerSubmitter struct {
	serializer Serializer
	signer     TransactionSigner
	executor   Executor
	wait       ledger.WaitOptions
	logger     zerolog.Logger
}

func NewLedgerSubmitter(config LedgerSubmitterConfig) (*LedgerSubmitter, error) {
	if config.Serializer == nil {
		return nil, fmt.Errorf("serializer is required")
	}
	if config.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if config.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	return &LedgerSubmitter{
		serializer: config.Serializer,
		signer:     config.Signer,
		executor:   config.Executor,
		wait:       config.Wait,
		logger:     shared.LoggerOrNop(config.Logger),
	}, nil
}

// Submit signs as the configured signer. A transaction with a different
// sender is rejected before anything is sent.
func (s *LedgerSubmitter) Submit(ctx context.Context, transaction Transaction) (Receipt, error) {
	signerAddress := s.signer.Address()
	if transaction.Sender == "" {
		transaction.Sender = signerAddress
	} else if !shared.SameObjectID(transaction.Sender, signerAddress) {
		return Receipt{}, fmt.Errorf("transaction sender %s does not match signer %s", transaction.Sender, signerAddress)
	}

	transactionBytes, err := s.serializer.Serialize(ctx, transaction)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	signature, err := s.signer.SignTransaction(transactionBytes)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	response, err := s.executor.ExecuteTransactionBlock(
		ctx,
		base64.StdEncoding.EncodeToString(transactionBytes),
		[]string{signature},
	)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to execute transaction: %w", err)
	}
	receipt := Receipt{Digest: response.Digest}
	if response.Effects != nil && !response.Succeeded() {
		return receipt, ExecutionError{Digest: response.Digest, Reason: response.FailureReason()}
	}

	final, err := s.executor.WaitForTransaction(ctx, response.Digest, s.wait)
	if err != nil {
		return receipt, fmt.Errorf("failed waiting for transaction %s: %w", response.Digest, err)
	}
	if !final.Succeeded() {
		return receipt, ExecutionError{Digest: response.Digest, Reason: final.FailureReason()}
	}

	receipt.CreatedObjectIDs = final.CreatedObjectIDs()
	s.logger.Debug().Str("digest", receipt.Digest).Msg("transaction final")
	return receipt, nil
}
