package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WaitOptions tunes WaitForTransaction polling.
type WaitOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
}

const (
	defaultWaitInitialInterval = 500 * time.Millisecond
	defaultWaitMaxInterval     = 5 * time.Second
	defaultWaitTimeout         = 60 * time.Second
)

// WaitForTransaction polls sui_getTransactionBlock until the node returns the
// transaction with effects, the timeout elapses or ctx is cancelled. Only
// "not found" style answers and transport failures are retried.
func (c *Client) WaitForTransaction(
	ctx context.Context,
	digest string,
	options WaitOptions,
) (TransactionResponse, error) {
	if options.InitialInterval <= 0 {
		options.InitialInterval = defaultWaitInitialInterval
	}
	if options.MaxInterval <= 0 {
		options.MaxInterval = defaultWaitMaxInterval
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultWaitTimeout
	}

	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(options.InitialInterval),
		backoff.WithMaxInterval(options.MaxInterval),
		backoff.WithMaxElapsedTime(options.Timeout),
	)

	var result TransactionResponse
	operation := func() error {
		response, err := c.GetTransactionBlock(ctx, digest)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) && !errors.Is(err, ErrObjectNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		if response.Effects == nil {
			return fmt.Errorf("transaction %s has no effects yet", digest)
		}
		result = response
		return nil
	}

	notify := func(err error, next time.Duration) {
		c.logger.Debug().Err(err).Str("digest", digest).Dur("retry_in", next).Msg("waiting for transaction")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return TransactionResponse{}, fmt.Errorf("wait for transaction %s: %w", digest, err)
	}
	return result, nil
}
