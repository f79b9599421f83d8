package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

type Config struct {
	Network       string
	PublisherURL  string
	AggregatorURL string
	Epochs        int
	MaxBlobSize   int64
	HTTPClient    *http.Client
	Headers       map[string]string
	Logger        *zerolog.Logger
}

type Client struct {
	publisherURL  string
	aggregatorURL string
	epochs        int
	maxBlobSize   int64
	httpClient    *http.Client
	headers       map[string]string
	logger        zerolog.Logger
}

// NewClient creates a new Client. Empty URLs fall back to the network's
// public publisher and aggregator. A missing publisher leaves the client
// read-only.
func NewClient(config Config) (*Client, error) {
	defaults, err := shared.DefaultsFor(config.Network)
	if err != nil {
		return nil, err
	}

	publisherURL := strings.TrimSpace(config.PublisherURL)
	if publisherURL == "" {
		publisherURL = defaults.PublisherURL
	}
	if publisherURL != "" {
		if publisherURL, err = shared.NormalizeBaseURL(publisherURL); err != nil {
			return nil, fmt.Errorf("invalid publisher URL: %w", err)
		}
	}

	aggregatorURL := strings.TrimSpace(config.AggregatorURL)
	if aggregatorURL == "" {
		aggregatorURL = defaults.AggregatorURL
	}
	if aggregatorURL, err = shared.NormalizeBaseURL(aggregatorURL); err != nil {
		return nil, fmt.Errorf("invalid aggregator URL: %w", err)
	}

	epochs := config.Epochs
	if epochs == 0 {
		epochs = shared.DefaultEpochs
	}
	if epochs < 0 {
		return nil, fmt.Errorf("epochs cannot be negative")
	}

	maxBlobSize := config.MaxBlobSize
	if maxBlobSize <= 0 {
		maxBlobSize = DefaultMaxBlobSize
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		publisherURL:  publisherURL,
		aggregatorURL: aggregatorURL,
		epochs:        epochs,
		maxBlobSize:   maxBlobSize,
		httpClient:    httpClient,
		headers:       headers,
		logger:        shared.LoggerOrNop(config.Logger).With().Str("component", "blobstore").Logger(),
	}, nil
}

// AggregatorURL returns the public read endpoint.
func (c *Client) AggregatorURL() string {
	return c.aggregatorURL
}

// URL returns the public read URL of blobID.
func (c *Client) URL(blobID string) string {
	return BlobURL(c.aggregatorURL, blobID)
}

// Put stores data for the configured number of epochs.
func (c *Client) Put(ctx context.Context, data []byte, contentType string) (BlobRef, error) {
	if c.publisherURL == "" {
		return BlobRef{}, fmt.Errorf("%w: no publisher configured", ErrStoreUnavailable)
	}
	if len(data) == 0 {
		return BlobRef{}, fmt.Errorf("%w: blob is empty", ErrStoreRejected)
	}
	if int64(len(data)) > c.maxBlobSize {
		return BlobRef{}, fmt.Errorf(
			"%w: blob of %d bytes exceeds limit of %d bytes",
			ErrStoreRejected,
			len(data),
			c.maxBlobSize,
		)
	}

	endpoint := c.publisherURL + "/v1/blobs?epochs=" + strconv.Itoa(c.epochs)
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return BlobRef{}, fmt.Errorf("failed to create request: %w", err)
	}
	if strings.TrimSpace(contentType) != "" {
		request.Header.Set("Content-Type", contentType)
	} else {
		request.Header.Set("Content-Type", "application/octet-stream")
	}
	request.Header.Set("Accept", "application/json")
	c.applyHeaders(request)

	body, status, _, err := c.do(request)
	if err != nil {
		return BlobRef{}, err
	}
	if status < 200 || status >= 300 {
		return BlobRef{}, &StatusError{Op: "put", StatusCode: status, Body: trimBody(body)}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return BlobRef{}, fmt.Errorf("failed to decode blob store response: %w", err)
	}
	ref, err := parsePutResponse(raw)
	if err != nil {
		return BlobRef{}, err
	}

	c.logger.Debug().
		Str("blob_id", ref.BlobID).
		Int("size", len(data)).
		Bool("already_certified", ref.AlreadyCertified).
		Msg("blob stored")
	return ref, nil
}

// Get reads the blob content.
func (c *Client) Get(ctx context.Context, blobID string) ([]byte, error) {
	if strings.TrimSpace(blobID) == "" {
		return nil, fmt.Errorf("blob ID is required")
	}
	return c.Fetch(ctx, c.URL(blobID))
}

// Fetch reads a blob by its public URL. Answers encoded with brotli are
// decoded transparently.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept-Encoding", "br")
	c.applyHeaders(request)

	body, status, header, err := c.do(request)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Op: "get", StatusCode: status, Body: trimBody(body)}
	}

	if strings.EqualFold(strings.TrimSpace(header.Get("Content-Encoding")), "br") {
		decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode brotli blob: %w", err)
		}
		return decoded, nil
	}
	return body, nil
}

// Exists probes the aggregator for blobID. HEAD is tried first; aggregators
// that do not allow HEAD are probed with GET.
func (c *Client) Exists(ctx context.Context, blobID string) (bool, error) {
	if strings.TrimSpace(blobID) == "" {
		return false, fmt.Errorf("blob ID is required")
	}

	status, err := c.probe(ctx, http.MethodHead, blobID)
	if err != nil {
		return false, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		if status, err = c.probe(ctx, http.MethodGet, blobID); err != nil {
			return false, err
		}
	}

	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, &StatusError{Op: "probe", StatusCode: status}
	}
}

func (c *Client) probe(ctx context.Context, method string, blobID string) (int, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.URL(blobID), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	return response.StatusCode, nil
}

func (c *Client) do(request *http.Request) ([]byte, int, http.Header, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: failed to read response: %w", ErrStoreUnavailable, err)
	}
	return body, response.StatusCode, response.Header, nil
}

func (c *Client) applyHeaders(request *http.Request) {
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
}

func parsePutResponse(raw map[string]any) (BlobRef, error) {
	if created, ok := raw["newlyCreated"].(map[string]any); ok {
		if blobObject, ok := created["blobObject"].(map[string]any); ok {
			if ref, ok := parseBlobObject(blobObject); ok {
				return ref, nil
			}
		}
	}

	if certified, ok := raw["alreadyCertified"].(map[string]any); ok {
		if blobID, ok := certified["blobId"].(string); ok && blobID != "" {
			ref := BlobRef{BlobID: blobID, AlreadyCertified: true}
			if endEpoch, ok := certified["endEpoch"].(float64); ok {
				ref.EndEpoch = int64(endEpoch)
			}
			return ref, nil
		}
	}

	if blobObject, ok := raw["blobObject"].(map[string]any); ok {
		if ref, ok := parseBlobObject(blobObject); ok {
			return ref, nil
		}
	}

	if blobID, ok := raw["blobId"].(string); ok && blobID != "" {
		return BlobRef{BlobID: blobID}, nil
	}

	return BlobRef{}, fmt.Errorf("blob store response did not contain a blob ID")
}

func parseBlobObject(raw map[string]any) (BlobRef, bool) {
	blobID, ok := raw["blobId"].(string)
	if !ok || blobID == "" {
		return BlobRef{}, false
	}

	ref := BlobRef{BlobID: blobID}
	if objectID, ok := raw["id"].(string); ok {
		ref.ObjectID = objectID
	}
	if storage, ok := raw["storage"].(map[string]any); ok {
		if endEpoch, ok := storage["endEpoch"].(float64); ok {
			ref.EndEpoch = int64(endEpoch)
		}
	}
	return ref, true
}

func trimBody(body []byte) string {
	const limit = 512
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > limit {
		return trimmed[:limit]
	}
	return trimmed
}
