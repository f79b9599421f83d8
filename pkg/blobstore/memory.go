package blobstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

const defaultMemoryBaseURL = "http://blobstore.local"

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process Store. Blob identifiers are the unpadded
// URL-safe base64 BLAKE3 digest of the content, so identical bytes always map
// to the same identifier.
type MemoryStore struct {
	mu          sync.RWMutex
	blobs       map[string]memoryBlob
	baseURL     string
	maxBlobSize int64
	epochs      int64
}

// NewMemoryStore creates an empty store whose URLs are rooted at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultMemoryBaseURL
	}
	return &MemoryStore{
		blobs:       map[string]memoryBlob{},
		baseURL:     trimmed,
		maxBlobSize: DefaultMaxBlobSize,
		epochs:      5,
	}
}

// SetBaseURL changes the root of URLs returned by URL. Useful once an
// httptest server serving Handler has been started.
func (s *MemoryStore) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// SetMaxBlobSize changes the largest accepted payload.
func (s *MemoryStore) SetMaxBlobSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBlobSize = size
}

// BlobID returns the identifier MemoryStore assigns to data.
func BlobID(data []byte) string {
	digest := blake3.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

// Put stores data.
func (s *MemoryStore) Put(ctx context.Context, data []byte, contentType string) (BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return BlobRef{}, err
	}
	if len(data) == 0 {
		return BlobRef{}, fmt.Errorf("%w: blob is empty", ErrStoreRejected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(len(data)) > s.maxBlobSize {
		return BlobRef{}, fmt.Errorf(
			"%w: blob of %d bytes exceeds limit of %d bytes",
			ErrStoreRejected,
			len(data),
			s.maxBlobSize,
		)
	}

	blobID := BlobID(data)
	ref := BlobRef{BlobID: blobID, EndEpoch: s.epochs}
	if _, exists := s.blobs[blobID]; exists {
		ref.AlreadyCertified = true
		return ref, nil
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[blobID] = memoryBlob{data: stored, contentType: contentType}
	ref.ObjectID = fmt.Sprintf("0x%064x", len(s.blobs))
	return ref, nil
}

// Get returns a copy of the stored content.
func (s *MemoryStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, blobID)
	}
	copied := make([]byte, len(blob.data))
	copy(copied, blob.data)
	return copied, nil
}

// Exists reports whether blobID is stored.
func (s *MemoryStore) Exists(ctx context.Context, blobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[blobID]
	return ok, nil
}

// AggregatorURL returns the root of URLs returned by URL.
func (s *MemoryStore) AggregatorURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// URL returns the read URL of blobID.
func (s *MemoryStore) URL(blobID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BlobURL(s.baseURL, blobID)
}

// Fetch resolves a read URL produced by this or any aggregator-shaped URL
// scheme and returns the blob content.
func (s *MemoryStore) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	blobID, ok := BlobIDFromURL(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised blob URL %q", ErrNotFound, rawURL)
	}
	return s.Get(ctx, blobID)
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Replace overwrites the content stored under blobID without changing its
// identifier. It exists to simulate a misbehaving store in tests.
func (s *MemoryStore) Replace(blobID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := s.blobs[blobID]
	blob.data = append([]byte(nil), data...)
	s.blobs[blobID] = blob
}

// Delete removes blobID.
func (s *MemoryStore) Delete(blobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, blobID)
}

// Handler serves the publisher and aggregator HTTP surface backed by the store.
func (s *MemoryStore) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/blobs", s.handlePut)
	mux.HandleFunc("GET /v1/blobs/{id}", s.handleGet)
	mux.HandleFunc("GET /v1/{id}", s.handleGet)
	return mux
}

func (s *MemoryStore) handlePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(data) == 0 {
		http.Error(w, "blob is empty", http.StatusBadRequest)
		return
	}

	ref, err := s.Put(r.Context(), data, r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	var response map[string]any
	if ref.AlreadyCertified {
		response = map[string]any{
			"alreadyCertified": map[string]any{"blobId": ref.BlobID, "endEpoch": ref.EndEpoch},
		}
	} else {
		response = map[string]any{
			"newlyCreated": map[string]any{
				"blobObject": map[string]any{
					"id":      ref.ObjectID,
					"blobId":  ref.BlobID,
					"size":    len(data),
					"storage": map[string]any{"endEpoch": ref.EndEpoch},
				},
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func (s *MemoryStore) handleGet(w http.ResponseWriter, r *http.Request) {
	blobID := r.PathValue("id")

	s.mu.RLock()
	blob, ok := s.blobs[blobID]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if blob.contentType != "" {
		w.Header().Set("Content-Type", blob.contentType)
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_, _ = w.Write(blob.data)
}
