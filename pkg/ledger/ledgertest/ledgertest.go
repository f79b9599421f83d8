// Package ledgertest provides an in-memory ledger for tests. It implements
// the reader interfaces consumed by the registry and collection packages and
// can serve the JSON-RPC surface used by ledger.Client.
package ledgertest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/move"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

type object struct {
	id      string
	objType string
	fields  map[string]any
	version int
}

type dynamicField struct {
	name     ledger.DynamicFieldName
	objectID string
}

// Execution is a transaction received by ExecuteTransactionBlock.
type Execution struct {
	TransactionBytes string
	Signatures       []string
	Digest           string
}

// Ledger is a concurrency-safe fake object ledger.
type Ledger struct {
	mutex        sync.RWMutex
	objects      map[string]*object
	fields       map[string][]dynamicField
	executions   []Execution
	transactions map[string]ledger.TransactionResponse
	failures     []string
	nextObjectID int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		objects:      map[string]*object{},
		fields:       map[string][]dynamicField{},
		transactions: map[string]ledger.TransactionResponse{},
		nextObjectID: 0x1000,
	}
}

// PutObject stores or replaces an object.
func (l *Ledger) PutObject(objectID string, objectType string, fields map[string]any) string {
	id := mustID(objectID)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	version := 1
	if existing, ok := l.objects[id]; ok {
		version = existing.version + 1
	}
	l.objects[id] = &object{id: id, objType: objectType, fields: fields, version: version}
	return id
}

// UpdateField sets one field of an existing object.
func (l *Ledger) UpdateField(objectID string, name string, value any) {
	id := mustID(objectID)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	existing, ok := l.objects[id]
	if !ok {
		panic(fmt.Sprintf("ledgertest: unknown object %s", id))
	}
	updated := make(map[string]any, len(existing.fields))
	for key, current := range existing.fields {
		updated[key] = current
	}
	updated[name] = value
	existing.fields = updated
	existing.version++
}

// PutDynamicField attaches a dynamic field to parentID and returns the ID of
// the field object holding value.
func (l *Ledger) PutDynamicField(parentID string, name ledger.DynamicFieldName, value any) string {
	parent := mustID(parentID)
	name = normalizeName(name)

	l.mutex.Lock()
	l.nextObjectID++
	fieldID := fmt.Sprintf("0x%064x", l.nextObjectID)
	entries := l.fields[parent]
	for index, entry := range entries {
		if sameName(entry.name, name) {
			fieldID = entry.objectID
			entries = append(entries[:index], entries[index+1:]...)
			break
		}
	}
	l.fields[parent] = append(entries, dynamicField{name: name, objectID: fieldID})
	l.mutex.Unlock()

	l.PutObject(fieldID, fmt.Sprintf("0x2::dynamic_field::Field<%s, vector<0x2::object::ID>>", name.Type), map[string]any{
		"id":    map[string]any{"id": fieldID},
		"name":  name.Value,
		"value": value,
	})
	return fieldID
}

// FailNextExecution makes the next ExecuteTransactionBlock report a failed
// execution status with reason.
func (l *Ledger) FailNextExecution(reason string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.failures = append(l.failures, reason)
}

// Executions returns the transactions received so far.
func (l *Ledger) Executions() []Execution {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return append([]Execution(nil), l.executions...)
}

func (l *Ledger) lookupObject(objectID string) (*object, bool) {
	id, err := shared.NormalizeObjectID(objectID)
	if err != nil {
		return nil, false
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()
	found, ok := l.objects[id]
	if !ok {
		return nil, false
	}
	copied := *found
	return &copied, true
}

func (l *Ledger) lookupField(parentID string, name ledger.DynamicFieldName) (string, bool) {
	parent, err := shared.NormalizeObjectID(parentID)
	if err != nil {
		return "", false
	}
	name = normalizeName(name)

	l.mutex.RLock()
	defer l.mutex.RUnlock()
	for _, entry := range l.fields[parent] {
		if sameName(entry.name, name) {
			return entry.objectID, true
		}
	}
	return "", false
}

func (l *Ledger) listFields(parentID string) []dynamicField {
	parent, err := shared.NormalizeObjectID(parentID)
	if err != nil {
		return nil
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return append([]dynamicField(nil), l.fields[parent]...)
}

func (l *Ledger) execute(transactionBytes string, signatures []string) ledger.TransactionResponse {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	digest := "digest-" + strconv.Itoa(len(l.executions)+1)
	l.executions = append(l.executions, Execution{
		TransactionBytes: transactionBytes,
		Signatures:       append([]string(nil), signatures...),
		Digest:           digest,
	})

	status := ledger.ExecutionStatus{Status: "success"}
	if len(l.failures) > 0 {
		status = ledger.ExecutionStatus{Status: "failure", Error: l.failures[0]}
		l.failures = l.failures[1:]
	}

	response := ledger.TransactionResponse{
		Digest: digest,
		Effects: &ledger.TransactionEffects{
			Status:            status,
			TransactionDigest: digest,
		},
	}
	l.transactions[digest] = response
	return response
}

func (o *object) content() map[string]any {
	return map[string]any{
		"dataType":          "moveObject",
		"type":              o.objType,
		"hasPublicTransfer": false,
		"fields":            o.fields,
	}
}

func (o *object) toLedger() ledger.Object {
	encoded, err := json.Marshal(o.content())
	if err != nil {
		panic(fmt.Sprintf("ledgertest: encode object %s: %v", o.id, err))
	}
	decoder := json.NewDecoder(strings.NewReader(string(encoded)))
	decoder.UseNumber()
	var content map[string]any
	if err := decoder.Decode(&content); err != nil {
		panic(fmt.Sprintf("ledgertest: decode object %s: %v", o.id, err))
	}

	return ledger.Object{
		ObjectID: o.id,
		Version:  strconv.Itoa(o.version),
		Digest:   fmt.Sprintf("object-digest-%d", o.version),
		Type:     o.objType,
		Content:  move.FromJSON(content),
	}
}

func dynamicFieldName(fieldType string, value any) ledger.DynamicFieldName {
	return ledger.DynamicFieldName{Type: fieldType, Value: value}
}

func normalizeName(name ledger.DynamicFieldName) ledger.DynamicFieldName {
	if value, ok := name.Value.(string); ok && name.Type == "address" {
		if normalized, err := shared.NormalizeAddress(value); err == nil {
			name.Value = normalized
		}
	}
	return name
}

func sameName(left ledger.DynamicFieldName, right ledger.DynamicFieldName) bool {
	if left.Type != right.Type {
		return false
	}
	leftJSON, leftErr := json.Marshal(left.Value)
	rightJSON, rightErr := json.Marshal(right.Value)
	return leftErr == nil && rightErr == nil && string(leftJSON) == string(rightJSON)
}

func mustID(objectID string) string {
	id, err := shared.NormalizeObjectID(objectID)
	if err != nil {
		panic(fmt.Sprintf("ledgertest: invalid object ID %q: %v", objectID, err))
	}
	return id
}
