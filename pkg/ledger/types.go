package ledger

import (
	"encoding/json"
	"strings"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/move"
)

// DynamicFieldName is the typed key of a dynamic field, for example
// {Type: "address", Value: "0x..."}.
type DynamicFieldName struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Object is a ledger object with its Move content.
type Object struct {
	ObjectID string
	Version  string
	Digest   string
	Type     string
	Owner    any
	Content  move.Value
}

// Fields returns the content of the object, ready for move.Field lookups.
func (o Object) Fields() move.Value {
	return o.Content
}

// DynamicFieldInfo is one entry of a dynamic field page.
type DynamicFieldInfo struct {
	Name       DynamicFieldName `json:"name"`
	BCSName    string           `json:"bcsName"`
	Type       string           `json:"type"`
	ObjectType string           `json:"objectType"`
	ObjectID   string           `json:"objectId"`
	Version    json.Number      `json:"version"`
	Digest     string           `json:"digest"`
}

// DynamicFieldPage is one page of suix_getDynamicFields.
type DynamicFieldPage struct {
	Data        []DynamicFieldInfo `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type TransactionEffects struct {
	Status            ExecutionStatus  `json:"status"`
	TransactionDigest string           `json:"transactionDigest"`
	Created           []OwnedObjectRef `json:"created,omitempty"`
	Mutated           []OwnedObjectRef `json:"mutated,omitempty"`
}

type OwnedObjectRef struct {
	Owner     any             `json:"owner"`
	Reference ObjectReference `json:"reference"`
}

type ObjectReference struct {
	ObjectID string      `json:"objectId"`
	Version  json.Number `json:"version"`
	Digest   string      `json:"digest"`
}

// TransactionResponse is the subset of SuiTransactionBlockResponse the SDK reads.
type TransactionResponse struct {
	Digest      string              `json:"digest"`
	Effects     *TransactionEffects `json:"effects,omitempty"`
	Checkpoint  string              `json:"checkpoint,omitempty"`
	TimestampMs string              `json:"timestampMs,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
}

// Succeeded reports whether the transaction executed with status "success".
func (r TransactionResponse) Succeeded() bool {
	return r.Effects != nil && strings.EqualFold(r.Effects.Status.Status, "success") && len(r.Errors) == 0
}

// FailureReason describes why a transaction did not succeed.
func (r TransactionResponse) FailureReason() string {
	if len(r.Errors) > 0 {
		return strings.Join(r.Errors, "; ")
	}
	if r.Effects == nil {
		return "transaction effects unavailable"
	}
	if r.Effects.Status.Error != "" {
		return r.Effects.Status.Error
	}
	return r.Effects.Status.Status
}

// CreatedObjectIDs lists the IDs of objects created by the transaction.
func (r TransactionResponse) CreatedObjectIDs() []string {
	if r.Effects == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Effects.Created))
	for _, created := range r.Effects.Created {
		ids = append(ids, created.Reference.ObjectID)
	}
	return ids
}

type objectOptions struct {
	ShowType    bool `json:"showType"`
	ShowOwner   bool `json:"showOwner"`
	ShowContent bool `json:"showContent"`
}

type transactionOptions struct {
	ShowEffects bool `json:"showEffects"`
}

type objectResponse struct {
	Data  *objectData  `json:"data"`
	Error *objectError `json:"error"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Version  json.Number    `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Owner    any            `json:"owner"`
	Content  map[string]any `json:"content"`
}

type objectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
	Error    string `json:"error"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.Number     `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}
