package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

// DefaultCacheTTL is how long a reconstructed state is served before it is
// read from the ledger again.
const DefaultCacheTTL = 30 * time.Second

// ErrTokenUnavailable reports a mint attempt on a token that is minted or in flight.
var ErrTokenUnavailable = errors.New("token is not available")

// Loader loads collection state. *Reconstructor satisfies it.
type Loader interface {
	LoadCollection(ctx context.Context, collectionID string) (State, error)
}

// Cache holds read-only copies of collection state. Ledger reads are the
// source of truth; local mint tracking is layered on top and is discarded by
// Refresh, apart from in-flight submissions which survive until cleared.
type Cache struct {
	loader    Loader
	states    *gocache.Cache
	mutex     sync.Mutex
	submitted map[string]map[int]struct{}
}

// NewCache creates a cache in front of loader. ttl <= 0 selects DefaultCacheTTL.
func NewCache(loader Loader, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		loader:    loader,
		states:    gocache.New(ttl, 2*ttl),
		submitted: map[string]map[int]struct{}{},
	}
}

// Get returns the cached state, loading it when absent or expired.
func (c *Cache) Get(ctx context.Context, collectionID string) (State, error) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return State{}, err
	}

	c.mutex.Lock()
	cached, ok := c.lookup(id)
	c.mutex.Unlock()
	if ok {
		return cached, nil
	}

	return c.Refresh(ctx, id)
}

// Peek returns the cached state without loading.
func (c *Cache) Peek(collectionID string) (State, bool) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return State{}, false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lookup(id)
}

// Put stores state, replacing any cached copy.
func (c *Cache) Put(state State) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.states.SetDefault(state.Record.ID, state.Clone())
}

// Refresh reloads the collection from the ledger and drops optimistic patches.
func (c *Cache) Refresh(ctx context.Context, collectionID string) (State, error) {
	if c.loader == nil {
		return State{}, fmt.Errorf("%w: %s", ErrNotCached, collectionID)
	}

	state, err := c.loader.LoadCollection(ctx, collectionID)
	if err != nil {
		return State{}, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.states.SetDefault(state.Record.ID, state.Clone())
	cached, _ := c.lookup(state.Record.ID)
	return cached, nil
}

// Invalidate drops the cached state so the next Get reads the ledger.
func (c *Cache) Invalidate(collectionID string) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.states.Delete(id)
}

// MarkSubmitted flags the token at ordinal as having a mint in flight.
func (c *Cache) MarkSubmitted(collectionID string, ordinal int) error {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	state, ok := c.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotCached, id)
	}
	item, ok := state.Item(ordinal)
	if !ok {
		return fmt.Errorf("collection %s has no token with ordinal %d", id, ordinal)
	}
	if item.Status != StatusAvailable {
		return fmt.Errorf("%w: %s ordinal %d is %s", ErrTokenUnavailable, id, ordinal, item.Status)
	}

	if c.submitted[id] == nil {
		c.submitted[id] = map[int]struct{}{}
	}
	c.submitted[id][ordinal] = struct{}{}
	return nil
}

// ClearSubmitted removes the in-flight flag without changing the state. It is
// what a failed submission does.
func (c *Cache) ClearSubmitted(collectionID string, ordinal int) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clearSubmitted(id, ordinal)
}

// ApplyMint records a mint confirmed by the ledger: the token becomes
// Optimistic and the minted count grows by one until the next Refresh. When
// the cached state already shows the token as taken, it is left unchanged.
func (c *Cache) ApplyMint(collectionID string, ordinal int) (State, error) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return State{}, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.clearSubmitted(id, ordinal)

	raw, ok := c.states.Get(id)
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrNotCached, id)
	}
	state := raw.(State).Clone()
	if ordinal < 0 || ordinal >= len(state.Items) {
		return State{}, fmt.Errorf("collection %s has no token with ordinal %d", id, ordinal)
	}

	if state.Items[ordinal].Status != StatusAvailable {
		// A reload already reflects this mint.
		patched, _ := c.lookup(id)
		return patched, nil
	}

	state.Items[ordinal].Minted = true
	state.Items[ordinal].Status = StatusOptimistic
	state.Record.MintedCount++
	state.PendingMints++
	state.Warnings = checkConsistency(state.Record, len(state.Items))

	c.states.SetDefault(id, state)
	patched, _ := c.lookup(id)
	return patched, nil
}

func (c *Cache) clearSubmitted(id string, ordinal int) {
	if ordinals, ok := c.submitted[id]; ok {
		delete(ordinals, ordinal)
		if len(ordinals) == 0 {
			delete(c.submitted, id)
		}
	}
}

func (c *Cache) lookup(id string) (State, bool) {
	raw, ok := c.states.Get(id)
	if !ok {
		return State{}, false
	}
	state := raw.(State).Clone()
	for ordinal := range c.submitted[id] {
		if ordinal < len(state.Items) && state.Items[ordinal].Status == StatusAvailable {
			state.Items[ordinal].Status = StatusSubmitted
		}
	}
	return state, true
}
