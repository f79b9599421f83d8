package blobstore

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

func TestBlobStoreIntegration_PutAndGet(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live blob store integration tests")
	}

	config, err := shared.ConfigFromEnv()
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if config.PublisherURL == "" {
		t.Skipf("no publisher known for %s", config.Network)
	}

	client, err := NewClient(Config{
		Network:       config.Network,
		PublisherURL:  config.PublisherURL,
		AggregatorURL: config.AggregatorURL,
		Epochs:        1,
	})
	if err != nil {
		t.Fatalf("failed to create blob store client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payload := []byte("dropforge integration " + strconv.FormatInt(time.Now().UnixNano(), 10))
	ref, err := client.Put(ctx, payload, "text/plain")
	if err != nil {
		t.Fatalf("failed to put blob: %v", err)
	}
	t.Logf("stored blob %s (object %s, end epoch %d)", ref.BlobID, ref.ObjectID, ref.EndEpoch)

	stored, err := client.Get(ctx, ref.BlobID)
	if err != nil {
		t.Fatalf("failed to get blob: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatalf("blob %s content mismatch", ref.BlobID)
	}
}
