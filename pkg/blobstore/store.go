package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrStoreUnavailable reports a transport failure or a 5xx answer.
	ErrStoreUnavailable = errors.New("blob store unavailable")
	// ErrStoreRejected reports a 4xx answer or a payload refused before upload.
	ErrStoreRejected = errors.New("blob store rejected request")
	// ErrNotFound reports an unknown blob identifier.
	ErrNotFound = errors.New("blob not found")
)

// DefaultMaxBlobSize is the largest payload Put accepts unless configured otherwise.
const DefaultMaxBlobSize int64 = 10 << 20

// BlobRef identifies a stored blob.
type BlobRef struct {
	BlobID           string `json:"blobId"`
	ObjectID         string `json:"objectId,omitempty"`
	EndEpoch         int64  `json:"endEpoch,omitempty"`
	AlreadyCertified bool   `json:"alreadyCertified,omitempty"`
}

// Store is the contract shared by the HTTP client and the in-memory store.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (BlobRef, error)
	Get(ctx context.Context, blobID string) ([]byte, error)
	Exists(ctx context.Context, blobID string) (bool, error)
	URL(blobID string) string
}

// Fetcher reads a blob given its public URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// StatusError is a non-2xx answer from the store.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

// Error returns a human-readable error message.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("blob store %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("blob store %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is maps the status code onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrStoreRejected:
		return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusNotFound
	case ErrStoreUnavailable:
		return e.StatusCode >= 500 || e.StatusCode < 200
	default:
		return false
	}
}
