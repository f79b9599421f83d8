package ledgertest

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler serves the JSON-RPC methods used by ledger.Client.
func (l *Ledger) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var request rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, failure := l.dispatch(request)
		response := map[string]any{"jsonrpc": "2.0", "id": request.ID}
		if failure != nil {
			response["error"] = failure
		} else {
			response["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})
}

func (l *Ledger) dispatch(request rpcRequest) (any, *rpcError) {
	switch request.Method {
	case "sui_getObject":
		var objectID string
		if !decodeParam(request.Params, 0, &objectID) {
			return nil, invalidParams()
		}
		found, ok := l.lookupObject(objectID)
		if !ok {
			return map[string]any{"error": map[string]any{"code": "notExists", "object_id": objectID}}, nil
		}
		return map[string]any{"data": objectData(found)}, nil

	case "suix_getDynamicFieldObject":
		var parentID string
		var name struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}
		if !decodeParam(request.Params, 0, &parentID) || !decodeParam(request.Params, 1, &name) {
			return nil, invalidParams()
		}
		fieldID, ok := l.lookupField(parentID, dynamicFieldName(name.Type, name.Value))
		if !ok {
			return nil, &rpcError{Code: -32000, Message: "Cannot find dynamic field for object " + parentID}
		}
		found, ok := l.lookupObject(fieldID)
		if !ok {
			return map[string]any{"error": map[string]any{"code": "dynamicFieldNotFound"}}, nil
		}
		return map[string]any{"data": objectData(found)}, nil

	case "suix_getDynamicFields":
		var parentID string
		var cursor *string
		var limit int
		if !decodeParam(request.Params, 0, &parentID) {
			return nil, invalidParams()
		}
		decodeParam(request.Params, 1, &cursor)
		decodeParam(request.Params, 2, &limit)
		return l.fieldPage(parentID, cursor, limit), nil

	case "sui_executeTransactionBlock":
		var transactionBytes string
		var signatures []string
		if !decodeParam(request.Params, 0, &transactionBytes) || !decodeParam(request.Params, 1, &signatures) {
			return nil, invalidParams()
		}
		return l.execute(transactionBytes, signatures), nil

	case "sui_getTransactionBlock":
		var digest string
		if !decodeParam(request.Params, 0, &digest) {
			return nil, invalidParams()
		}
		l.mutex.RLock()
		response, ok := l.transactions[digest]
		l.mutex.RUnlock()
		if !ok {
			return nil, &rpcError{Code: -32602, Message: "Could not find the referenced transaction " + digest}
		}
		return response, nil

	default:
		return nil, &rpcError{Code: -32601, Message: "Method not found: " + request.Method}
	}
}

func (l *Ledger) fieldPage(parentID string, cursor *string, limit int) map[string]any {
	entries := l.listFields(parentID)
	if limit <= 0 {
		limit = 50
	}

	start := 0
	if cursor != nil {
		if parsed, err := strconv.Atoi(*cursor); err == nil && parsed >= 0 {
			start = parsed
		}
	}
	if start > len(entries) {
		start = len(entries)
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}

	data := make([]any, 0, end-start)
	for _, entry := range entries[start:end] {
		data = append(data, fieldInfo(entry))
	}

	page := map[string]any{"data": data, "hasNextPage": end < len(entries), "nextCursor": nil}
	if end < len(entries) {
		page["nextCursor"] = strconv.Itoa(end)
	}
	return page
}

func objectData(found *object) map[string]any {
	return map[string]any{
		"objectId": found.id,
		"version":  strconv.Itoa(found.version),
		"digest":   "object-digest-" + strconv.Itoa(found.version),
		"type":     found.objType,
		"owner":    map[string]any{"Shared": map[string]any{"initial_shared_version": 1}},
		"content":  found.content(),
	}
}

func decodeParam(params []json.RawMessage, index int, target any) bool {
	if index >= len(params) {
		return false
	}
	return json.Unmarshal(params[index], target) == nil
}

func invalidParams() *rpcError {
	return &rpcError{Code: -32602, Message: "Invalid params"}
}
