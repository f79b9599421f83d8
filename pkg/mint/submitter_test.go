package mint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger/ledgertest"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/signer"
)

var jsonSerializer = SerializerFunc(func(ctx context.Context, transaction Transaction) ([]byte, error) {
	return json.Marshal(transaction)
})

func newTestKeypair(t *testing.T) *signer.Keypair {
	t.Helper()
	keypair, err := signer.NewEd25519(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return keypair
}

func newTestSubmitter(t *testing.T, fake *ledgertest.Ledger, keypair *signer.Keypair) *LedgerSubmitter {
	t.Helper()
	submitter, err := NewLedgerSubmitter(LedgerSubmitterConfig{
		Serializer: jsonSerializer,
		Signer:     keypair,
		Executor:   fake,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return submitter
}

func TestLedgerSubmitterSignsAndExecutes(t *testing.T) {
	fake := ledgertest.New()
	keypair := newTestKeypair(t)
	submitter := newTestSubmitter(t, fake, keypair)

	transaction, err := newTestAssembler(t).AssembleMint(
		"0xc1",
		collection.TokenItem{Name: "Drop #1", ImageURL: "https://aggregator.example/v1/blobs/a"},
		keypair.Address(),
		5,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	receipt, err := submitter.Submit(context.Background(), transaction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Digest != "digest-1" {
		t.Fatalf("unexpected digest: %s", receipt.Digest)
	}

	executions := fake.Executions()
	if len(executions) != 1 || len(executions[0].Signatures) != 1 {
		t.Fatalf("unexpected executions: %+v", executions)
	}
	transactionBytes, err := base64.StdEncoding.DecodeString(executions[0].TransactionBytes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	address, err := signer.VerifyTransaction(transactionBytes, executions[0].Signatures[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != keypair.Address() {
		t.Fatalf("unexpected signer address: %s", address)
	}
}

func TestLedgerSubmitterReportsExecutionFailure(t *testing.T) {
	fake := ledgertest.New()
	fake.FailNextExecution("MoveAbort(sold_out)")
	keypair := newTestKeypair(t)
	submitter := newTestSubmitter(t, fake, keypair)

	receipt, err := submitter.Submit(context.Background(), Transaction{})
	var execution ExecutionError
	if !errors.As(err, &execution) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if execution.Reason != "MoveAbort(sold_out)" || receipt.Digest != "digest-1" {
		t.Fatalf("unexpected failure: %+v %+v", execution, receipt)
	}
}

func TestLedgerSubmitterRejectsForeignSender(t *testing.T) {
	fake := ledgertest.New()
	submitter := newTestSubmitter(t, fake, newTestKeypair(t))

	if _, err := submitter.Submit(context.Background(), Transaction{Sender: testPayer}); err == nil {
		t.Fatal("expected error for mismatched sender")
	}
	if len(fake.Executions()) != 0 {
		t.Fatal("nothing should reach the ledger")
	}
}

func TestMintThroughLedgerSubmitter(t *testing.T) {
	f := newFixture(t, "0")
	keypair := newTestKeypair(t)
	minter := newTestMinter(t, f, newTestSubmitter(t, f.ledger, keypair))

	request, err := NewMintRequest(f.state(t), 0, keypair.Address())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := minter.Mint(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State.Items[0].Status != collection.StatusOptimistic {
		t.Fatalf("unexpected status: %s", result.State.Items[0].Status)
	}

	f.ledger.FailNextExecution("MoveAbort(sold_out)")
	request, err = NewMintRequest(result.State, 1, keypair.Address())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := minter.Mint(context.Background(), request); !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	state, _ := f.cache.Peek(f.collectionID)
	if state.Record.MintedCount != 1 || state.Items[1].Status != collection.StatusAvailable {
		t.Fatalf("failed mint must not touch the patched state: %+v", state.Items[1])
	}
}
