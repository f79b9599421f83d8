package mint

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

// Receipt describes a transaction the ledger confirmed.
type Receipt struct {
	Digest           string
	CreatedObjectIDs []string
}

// Submitter executes a transaction and returns once the ledger has confirmed
// it. A failed execution should be reported as an ExecutionError.
type Submitter interface {
	Submit(ctx context.Context, transaction Transaction) (Receipt, error)
}

type MinterConfig struct {
	Assembler *Assembler
	Submitter Submitter
	// Cache receives the submitted marker and the optimistic patch. Optional.
	Cache  *collection.Cache
	Logger *zerolog.Logger
}

type Minter struct {
	assembler *Assembler
	submitter Submitter
	cache     *collection.Cache
	logger    zerolog.Logger
}

type MintResult struct {
	Receipt Receipt
	// State is the patched cached state, zero when the Minter has no cache.
	State collection.State
}

func NewMinter(config MinterConfig) (*Minter, error) {
	if config.Assembler == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	if config.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	return &Minter{
		assembler: config.Assembler,
		submitter: config.Submitter,
		cache:     config.Cache,
		logger:    shared.LoggerOrNop(config.Logger),
	}, nil
}

// Mint assembles and submits request. While the submission is in flight the
// token is Submitted in the cache; on success it becomes Optimistic and the
// cached minted count grows by one. On failure only the submitted marker is
// cleared and a TransactionFailedError is returned.
func (m *Minter) Mint(ctx context.Context, request *MintRequest) (MintResult, error) {
	if request == nil {
		return MintResult{}, fmt.Errorf("mint request is required")
	}
	if err := request.consume(); err != nil {
		return MintResult{}, err
	}

	transaction, err := m.assembler.AssembleMint(request.CollectionID, request.Item, request.Payer, request.Price)
	if err != nil {
		return MintResult{}, err
	}

	ordinal := request.Item.Ordinal
	logger := m.logger.With().
		Str("collection_id", request.CollectionID).
		Int("ordinal", ordinal).
		Logger()

	if m.cache != nil {
		if _, err := m.cache.Get(ctx, request.CollectionID); err != nil {
			return MintResult{}, err
		}
		if err := m.cache.MarkSubmitted(request.CollectionID, ordinal); err != nil {
			return MintResult{}, err
		}
	}

	logger.Debug().Uint64("price", request.Price).Msg("submitting mint")
	receipt, err := m.submitter.Submit(ctx, transaction)
	if err != nil {
		if m.cache != nil {
			m.cache.ClearSubmitted(request.CollectionID, ordinal)
		}
		logger.Warn().Err(err).Str("digest", receipt.Digest).Msg("mint failed")
		return MintResult{Receipt: receipt}, TransactionFailedError{
			CollectionID: request.CollectionID,
			Ordinal:      ordinal,
			Digest:       receipt.Digest,
			Err:          err,
		}
	}

	result := MintResult{Receipt: receipt}
	if m.cache != nil {
		state, err := m.cache.ApplyMint(request.CollectionID, ordinal)
		if err != nil {
			// The ledger confirmed; a lost cache entry is reloaded on next read.
			logger.Warn().Err(err).Msg("optimistic patch skipped")
		} else {
			result.State = state
		}
	}

	logger.Info().Str("digest", receipt.Digest).Msg("mint confirmed")
	return result, nil
}
