package blobstore

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
)

func newMemoryServer(t *testing.T) (*MemoryStore, *httptest.Server, *Client) {
	t.Helper()
	store := NewMemoryStore("")
	server := httptest.NewServer(store.Handler())
	store.SetBaseURL(server.URL)

	client, err := NewClient(Config{PublisherURL: server.URL, AggregatorURL: server.URL, Epochs: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store, server, client
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{Network: "testnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.AggregatorURL() != "https://aggregator.walrus-testnet.walrus.space" {
		t.Fatalf("unexpected aggregator: %s", client.AggregatorURL())
	}
	if client.publisherURL != "https://publisher.walrus-testnet.walrus.space" {
		t.Fatalf("unexpected publisher: %s", client.publisherURL)
	}
	if client.epochs != 5 || client.maxBlobSize != DefaultMaxBlobSize {
		t.Fatalf("unexpected defaults: %d %d", client.epochs, client.maxBlobSize)
	}
}

func TestNewClientInvalid(t *testing.T) {
	if _, err := NewClient(Config{AggregatorURL: "not a url"}); err == nil {
		t.Fatal("expected error for invalid aggregator URL")
	}
	if _, err := NewClient(Config{Epochs: -1}); err == nil {
		t.Fatal("expected error for negative epochs")
	}
}

func TestPutGetExistsRoundTrip(t *testing.T) {
	_, server, client := newMemoryServer(t)
	defer server.Close()

	ctx := context.Background()
	ref, err := client.Put(ctx, []byte("image-bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.BlobID != BlobID([]byte("image-bytes")) || ref.AlreadyCertified {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.ObjectID == "" || ref.EndEpoch == 0 {
		t.Fatalf("expected blob object details: %+v", ref)
	}

	exists, err := client.Exists(ctx, ref.BlobID)
	if err != nil || !exists {
		t.Fatalf("expected blob to exist: %v %v", exists, err)
	}

	data, err := client.Get(ctx, ref.BlobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected content: %q", data)
	}

	again, err := client.Put(ctx, []byte("image-bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.AlreadyCertified || again.BlobID != ref.BlobID {
		t.Fatalf("expected already certified ref: %+v", again)
	}
}

func TestPutSendsEpochs(t *testing.T) {
	var seenQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenQuery = r.URL.RawQuery
		if r.Method != http.MethodPut || r.URL.Path != "/v1/blobs" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"blobId":"plain-id"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{PublisherURL: server.URL, AggregatorURL: server.URL, Epochs: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, err := client.Put(context.Background(), []byte("x"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.BlobID != "plain-id" || seenQuery != "epochs=7" {
		t.Fatalf("unexpected result: %+v query=%s", ref, seenQuery)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	_, server, client := newMemoryServer(t)
	defer server.Close()

	_, err := client.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	exists, err := client.Exists(context.Background(), "missing")
	if err != nil || exists {
		t.Fatalf("expected missing blob: %v %v", exists, err)
	}
}

func TestPutRejectsOversizeWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, err := NewClient(Config{PublisherURL: server.URL, AggregatorURL: server.URL, MaxBlobSize: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = client.Put(context.Background(), []byte("too large"), "text/plain")
	if !errors.Is(err, ErrStoreRejected) {
		t.Fatalf("expected ErrStoreRejected, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		target error
	}{
		{status: http.StatusBadRequest, target: ErrStoreRejected},
		{status: http.StatusRequestEntityTooLarge, target: ErrStoreRejected},
		{status: http.StatusInternalServerError, target: ErrStoreUnavailable},
		{status: http.StatusServiceUnavailable, target: ErrStoreUnavailable},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		client, err := NewClient(Config{PublisherURL: server.URL, AggregatorURL: server.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = client.Put(context.Background(), []byte("x"), "")
		if !errors.Is(err, tc.target) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.target, err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != tc.status {
			t.Fatalf("status %d: expected StatusError, got %v", tc.status, err)
		}
		server.Close()
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(Config{PublisherURL: url, AggregatorURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Put(context.Background(), []byte("x"), ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := client.Get(context.Background(), "id"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestPutWithoutPublisher(t *testing.T) {
	client, err := NewClient(Config{Network: "mainnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Put(context.Background(), []byte("x"), ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestExistsFallsBackToGet(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	client, err := NewClient(Config{AggregatorURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, err := client.Exists(context.Background(), "blob")
	if err != nil || !exists {
		t.Fatalf("expected blob to exist: %v %v", exists, err)
	}
	if strings.Join(methods, ",") != "HEAD,GET" {
		t.Fatalf("unexpected methods: %v", methods)
	}
}

func TestFetchDecodesBrotli(t *testing.T) {
	var compressed bytes.Buffer
	writer := brotli.NewWriter(&compressed)
	if _, err := writer.Write([]byte(`["https://a/v1/blobs/1"]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "br" {
			t.Errorf("unexpected Accept-Encoding: %s", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(compressed.Bytes())
	}))
	defer server.Close()

	client, err := NewClient(Config{AggregatorURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := client.Get(context.Background(), "manifest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `["https://a/v1/blobs/1"]` {
		t.Fatalf("unexpected content: %s", data)
	}
}

func TestParsePutResponseShapes(t *testing.T) {
	cases := []struct {
		name     string
		raw      map[string]any
		blobID   string
		endEpoch int64
		cert     bool
	}{
		{
			name: "newly created",
			raw: map[string]any{"newlyCreated": map[string]any{"blobObject": map[string]any{
				"id": "0x1", "blobId": "new", "storage": map[string]any{"endEpoch": float64(12)},
			}}},
			blobID:   "new",
			endEpoch: 12,
		},
		{
			name:     "already certified",
			raw:      map[string]any{"alreadyCertified": map[string]any{"blobId": "old", "endEpoch": float64(9)}},
			blobID:   "old",
			endEpoch: 9,
			cert:     true,
		},
		{
			name:   "bare blob object",
			raw:    map[string]any{"blobObject": map[string]any{"blobId": "obj"}},
			blobID: "obj",
		},
		{
			name:   "flat",
			raw:    map[string]any{"blobId": "flat"},
			blobID: "flat",
		},
	}

	for _, tc := range cases {
		ref, err := parsePutResponse(tc.raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if ref.BlobID != tc.blobID || ref.EndEpoch != tc.endEpoch || ref.AlreadyCertified != tc.cert {
			t.Fatalf("%s: unexpected ref: %+v", tc.name, ref)
		}
	}

	if _, err := parsePutResponse(map[string]any{"unexpected": true}); err == nil {
		t.Fatal("expected error for response without blob ID")
	}
}
