package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrObjectNotFound reports a missing object, deleted object or dynamic field entry.
var ErrObjectNotFound = errors.New("ledger object not found")

// RPCError is a JSON-RPC error object returned by the full node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error returns a human-readable error message.
func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

// Is matches ErrObjectNotFound for the node's "cannot find" family of messages.
func (e *RPCError) Is(target error) bool {
	if target != ErrObjectNotFound {
		return false
	}
	message := strings.ToLower(e.Message)
	return strings.Contains(message, "cannot find dynamic field") ||
		strings.Contains(message, "could not find the referenced transaction")
}

// HTTPError reports a non-2xx response from the full node.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error returns a human-readable error message.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ledger request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("ledger request failed with status %d: %s", e.StatusCode, e.Body)
}
