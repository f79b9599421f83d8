package mint

import (
	"fmt"
	"sync/atomic"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

// MintRequest pairs a token with the price and payer it is minted for. A
// request is consumed by its first Minter.Mint call.
type MintRequest struct {
	CollectionID string
	Item         collection.TokenItem
	Price        uint64
	Payer        string

	consumed atomic.Bool
}

// NewMintRequest takes the current mint price from state and checks that the
// token at ordinal is still available.
func NewMintRequest(state collection.State, ordinal int, payer string) (*MintRequest, error) {
	item, ok := state.Item(ordinal)
	if !ok {
		return nil, fmt.Errorf("collection %s has no token with ordinal %d", state.Record.ID, ordinal)
	}
	if item.Status != collection.StatusAvailable {
		return nil, fmt.Errorf("%w: ordinal %d is %s", collection.ErrTokenUnavailable, ordinal, item.Status)
	}
	normalizedPayer, err := shared.NormalizeAddress(payer)
	if err != nil {
		return nil, err
	}

	return &MintRequest{
		CollectionID: state.Record.ID,
		Item:         item,
		Price:        state.Record.MintPrice,
		Payer:        normalizedPayer,
	}, nil
}

func (r *MintRequest) consume() error {
	if !r.consumed.CompareAndSwap(false, true) {
		return ErrRequestConsumed
	}
	return nil
}
