package ledgertest

import (
	"context"
	"fmt"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
)

// GetObject returns the stored object or ledger.ErrObjectNotFound.
func (l *Ledger) GetObject(ctx context.Context, objectID string) (ledger.Object, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Object{}, err
	}
	found, ok := l.lookupObject(objectID)
	if !ok {
		return ledger.Object{}, fmt.Errorf("%w: %s", ledger.ErrObjectNotFound, objectID)
	}
	return found.toLedger(), nil
}

// GetDynamicFieldObject returns the field object stored under name.
func (l *Ledger) GetDynamicFieldObject(
	ctx context.Context,
	parentID string,
	name ledger.DynamicFieldName,
) (ledger.Object, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Object{}, err
	}
	fieldID, ok := l.lookupField(parentID, name)
	if !ok {
		return ledger.Object{}, fmt.Errorf("%w: dynamic field %v of %s", ledger.ErrObjectNotFound, name.Value, parentID)
	}
	return l.GetObject(ctx, fieldID)
}

// ListDynamicFields returns every dynamic field of parentID.
func (l *Ledger) ListDynamicFields(ctx context.Context, parentID string) ([]ledger.DynamicFieldInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := l.listFields(parentID)
	infos := make([]ledger.DynamicFieldInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, fieldInfo(entry))
	}
	return infos, nil
}

// ExecuteTransactionBlock records the submission and reports its effects.
func (l *Ledger) ExecuteTransactionBlock(
	ctx context.Context,
	transactionBytes string,
	signatures []string,
) (ledger.TransactionResponse, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionResponse{}, err
	}
	return l.execute(transactionBytes, signatures), nil
}

// WaitForTransaction returns the recorded effects of digest.
func (l *Ledger) WaitForTransaction(
	ctx context.Context,
	digest string,
	_ ledger.WaitOptions,
) (ledger.TransactionResponse, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionResponse{}, err
	}
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	response, ok := l.transactions[digest]
	if !ok {
		return ledger.TransactionResponse{}, fmt.Errorf("%w: transaction %s", ledger.ErrObjectNotFound, digest)
	}
	return response, nil
}

func fieldInfo(entry dynamicField) ledger.DynamicFieldInfo {
	return ledger.DynamicFieldInfo{
		Name:       entry.name,
		Type:       "DynamicField",
		ObjectType: "vector<0x2::object::ID>",
		ObjectID:   entry.objectID,
	}
}
