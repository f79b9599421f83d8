package mint

import (
	"context"
	"testing"
	"time"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/blobstore"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger/ledgertest"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/manifest"
)

const (
	testPackageID  = "0xd0f0"
	testRegistryID = "0xfeed"
	testPayer      = "0xb0b"
)

type fixture struct {
	ledger       *ledgertest.Ledger
	store        *blobstore.MemoryStore
	cache        *collection.Cache
	collectionID string
}

func newFixture(t *testing.T, mintedCount string) fixture {
	t.Helper()
	fake := ledgertest.New()
	store := blobstore.NewMemoryStore("https://aggregator.example")

	encoded, err := manifest.Encode(manifest.Manifest{"urlA", "urlB", "urlC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, err := store.Put(context.Background(), encoded, manifest.ContentType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	collectionID := fake.PutObject("0xc1", "0xd0f0::dropforge::Collection", map[string]any{
		"id":           map[string]any{"id": "0xc1"},
		"name":         "Drop",
		"description":  "First drop",
		"max_supply":   "3",
		"minted_count": mintedCount,
		"mint_price":   "1000000000",
		"base_uri":     ref.BlobID,
	})

	reconstructor, err := collection.NewReconstructor(collection.Config{Reader: fake, Source: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return fixture{
		ledger:       fake,
		store:        store,
		cache:        collection.NewCache(reconstructor, time.Minute),
		collectionID: collectionID,
	}
}

func (f fixture) state(t *testing.T) collection.State {
	t.Helper()
	state, err := f.cache.Get(context.Background(), f.collectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return state
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	assembler, err := NewAssembler(AssemblerConfig{PackageID: testPackageID, RegistryID: testRegistryID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return assembler
}

func pureValue(t *testing.T, transaction Transaction, argument Argument) any {
	t.Helper()
	input, ok := transaction.InputFor(argument)
	if !ok {
		t.Fatalf("argument %+v is not an input", argument)
	}
	if input.Kind != InputPure {
		t.Fatalf("argument %+v is not pure: %+v", argument, input)
	}
	return input.Value
}
