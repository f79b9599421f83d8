package ledger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/move"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

const defaultPageLimit = 50

var rpcJSON = jsoniter.Config{
	EscapeHTML:             true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

type Config struct {
	Network    string
	Endpoint   string
	HTTPClient *http.Client
	Headers    map[string]string
	Logger     *zerolog.Logger
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
	logger     zerolog.Logger
	requestID  atomic.Uint64
}

// NewClient creates a new Client. An empty Endpoint selects the network's
// public full node.
func NewClient(config Config) (*Client, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		defaults, err := shared.DefaultsFor(config.Network)
		if err != nil {
			return nil, err
		}
		endpoint = defaults.RPCURL
	}
	normalized, err := shared.NormalizeBaseURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger endpoint: %w", err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		endpoint:   normalized,
		httpClient: httpClient,
		headers:    headers,
		logger:     shared.LoggerOrNop(config.Logger).With().Str("component", "ledger").Logger(),
	}, nil
}

// Endpoint returns the full node URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetObject returns the object with its type, owner and content. Missing and
// deleted objects are reported as ErrObjectNotFound.
func (c *Client) GetObject(ctx context.Context, objectID string) (Object, error) {
	normalized, err := shared.NormalizeObjectID(objectID)
	if err != nil {
		return Object{}, err
	}

	var response objectResponse
	options := objectOptions{ShowType: true, ShowOwner: true, ShowContent: true}
	if err := c.call(ctx, "sui_getObject", []any{normalized, options}, &response); err != nil {
		return Object{}, err
	}

	return response.object(normalized)
}

// GetDynamicFieldObject returns the dynamic field object stored under name
// on parentID. A missing entry is reported as ErrObjectNotFound.
func (c *Client) GetDynamicFieldObject(
	ctx context.Context,
	parentID string,
	name DynamicFieldName,
) (Object, error) {
	normalized, err := shared.NormalizeObjectID(parentID)
	if err != nil {
		return Object{}, err
	}
	if strings.TrimSpace(name.Type) == "" {
		return Object{}, fmt.Errorf("dynamic field name type is required")
	}

	var response objectResponse
	if err := c.call(ctx, "suix_getDynamicFieldObject", []any{normalized, name}, &response); err != nil {
		return Object{}, err
	}

	return response.object(normalized)
}

// GetDynamicFields returns one page of dynamic fields of parentID.
func (c *Client) GetDynamicFields(
	ctx context.Context,
	parentID string,
	cursor string,
	limit int,
) (DynamicFieldPage, error) {
	var page DynamicFieldPage
	normalized, err := shared.NormalizeObjectID(parentID)
	if err != nil {
		return page, err
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}

	var cursorParam any
	if cursor != "" {
		cursorParam = cursor
	}
	if err := c.call(ctx, "suix_getDynamicFields", []any{normalized, cursorParam, limit}, &page); err != nil {
		return page, err
	}

	return page, nil
}

// ListDynamicFields pages through every dynamic field of parentID.
func (c *Client) ListDynamicFields(ctx context.Context, parentID string) ([]DynamicFieldInfo, error) {
	result := make([]DynamicFieldInfo, 0)
	cursor := ""

	for {
		page, err := c.GetDynamicFields(ctx, parentID, cursor, defaultPageLimit)
		if err != nil {
			return nil, err
		}
		result = append(result, page.Data...)

		if !page.HasNextPage || page.NextCursor == nil || *page.NextCursor == "" || *page.NextCursor == cursor {
			break
		}
		cursor = *page.NextCursor
	}

	return result, nil
}

// ExecuteTransactionBlock submits base64 transaction bytes with their
// serialized signatures and returns the effects reported by the node.
func (c *Client) ExecuteTransactionBlock(
	ctx context.Context,
	transactionBytes string,
	signatures []string,
) (TransactionResponse, error) {
	var response TransactionResponse
	if strings.TrimSpace(transactionBytes) == "" {
		return response, fmt.Errorf("transaction bytes are required")
	}
	if len(signatures) == 0 {
		return response, fmt.Errorf("at least one signature is required")
	}

	params := []any{transactionBytes, signatures, transactionOptions{ShowEffects: true}}
	if err := c.call(ctx, "sui_executeTransactionBlock", params, &response); err != nil {
		return response, err
	}

	c.logger.Debug().Str("digest", response.Digest).Msg("transaction submitted")
	return response, nil
}

// GetTransactionBlock returns the transaction with its effects.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string) (TransactionResponse, error) {
	var response TransactionResponse
	normalized := strings.TrimSpace(digest)
	if normalized == "" {
		return response, fmt.Errorf("transaction digest is required")
	}

	params := []any{normalized, transactionOptions{ShowEffects: true}}
	if err := c.call(ctx, "sui_getTransactionBlock", params, &response); err != nil {
		return response, err
	}

	return response, nil
}

func (r objectResponse) object(requestedID string) (Object, error) {
	if r.Error != nil {
		switch r.Error.Code {
		case "notExists", "deleted", "dynamicFieldNotFound":
			return Object{}, fmt.Errorf("%w: %s (%s)", ErrObjectNotFound, requestedID, r.Error.Code)
		default:
			return Object{}, fmt.Errorf("ledger object %s error: %s %s", requestedID, r.Error.Code, r.Error.Error)
		}
	}
	if r.Data == nil {
		return Object{}, fmt.Errorf("%w: %s", ErrObjectNotFound, requestedID)
	}

	var content move.Value
	if r.Data.Content != nil {
		content = move.FromJSON(r.Data.Content)
	}

	objectType := r.Data.Type
	if objectType == "" {
		objectType = content.Type()
	}

	return Object{
		ObjectID: r.Data.ObjectID,
		Version:  r.Data.Version.String(),
		Digest:   r.Data.Digest,
		Type:     objectType,
		Owner:    r.Data.Owner,
		Content:  content,
	}, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, target any) error {
	id := c.requestID.Add(1)
	payload, err := rpcJSON.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("ledger request %s failed: %w", method, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read ledger response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Uint64("request_id", id).
		Int("status", response.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("ledger rpc")

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &HTTPError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var envelope rpcResponse
	if err := rpcJSON.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode ledger response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return fmt.Errorf("%s: empty result", method)
	}

	if err := rpcJSON.Unmarshal(envelope.Result, target); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}
