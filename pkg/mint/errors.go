package mint

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionFailed = errors.New("mint transaction failed")
	ErrRequestConsumed   = errors.New("mint request already consumed")
)

// TransactionFailedError reports a submission the ledger did not confirm.
// Digest is empty when the transaction never reached the ledger.
type TransactionFailedError struct {
	CollectionID string
	Ordinal      int
	Digest       string
	Err          error
}

func (e TransactionFailedError) Error() string {
	if e.Digest != "" {
		return fmt.Sprintf("mint of %s #%d failed (digest %s): %v", e.CollectionID, e.Ordinal+1, e.Digest, e.Err)
	}
	return fmt.Sprintf("mint of %s #%d failed: %v", e.CollectionID, e.Ordinal+1, e.Err)
}

func (e TransactionFailedError) Is(target error) bool {
	return target == ErrTransactionFailed
}

func (e TransactionFailedError) Unwrap() error {
	return e.Err
}

// ExecutionError is returned by a Submitter when the ledger executed the
// transaction and reported a failure status.
type ExecutionError struct {
	Digest string
	Reason string
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Digest, e.Reason)
}
