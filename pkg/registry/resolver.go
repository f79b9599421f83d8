package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/move"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

const (
	fieldUserCollections = "user_collections"
	fieldValue           = "value"
	addressKeyType       = "address"
)

// ObjectReader is the ledger query surface the resolver depends on.
// *ledger.Client satisfies it.
type ObjectReader interface {
	GetObject(ctx context.Context, objectID string) (ledger.Object, error)
	GetDynamicFieldObject(ctx context.Context, parentID string, name ledger.DynamicFieldName) (ledger.Object, error)
	ListDynamicFields(ctx context.Context, parentID string) ([]ledger.DynamicFieldInfo, error)
}

type Config struct {
	Reader     ObjectReader
	RegistryID string
	Logger     *zerolog.Logger
}

type Resolver struct {
	reader     ObjectReader
	registryID string
	logger     zerolog.Logger

	mutex   sync.RWMutex
	tableID string
}

// Creator is one account that has an entry in the registry.
type Creator struct {
	Address  string `json:"address"`
	ObjectID string `json:"objectId"`
}

// NewResolver creates a new Resolver.
func NewResolver(config Config) (*Resolver, error) {
	if config.Reader == nil {
		return nil, fmt.Errorf("object reader is required")
	}
	registryID, err := shared.NormalizeObjectID(config.RegistryID)
	if err != nil {
		return nil, fmt.Errorf("invalid registry ID: %w", err)
	}

	return &Resolver{
		reader:     config.Reader,
		registryID: registryID,
		logger: shared.LoggerOrNop(config.Logger).With().
			Str("component", "registry").
			Str("registry_id", registryID).
			Logger(),
	}, nil
}

// RegistryID returns the normalized registry object ID.
func (r *Resolver) RegistryID() string {
	return r.registryID
}

// ResolveOwnedCollections returns the IDs of collections created by account,
// in registry order. An account without a registry entry yields an empty
// slice and no error.
func (r *Resolver) ResolveOwnedCollections(ctx context.Context, account string) ([]string, error) {
	address, err := shared.NormalizeAddress(account)
	if err != nil {
		return nil, err
	}

	tableID, err := r.TableID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := r.reader.GetDynamicFieldObject(ctx, tableID, ledger.DynamicFieldName{
		Type:  addressKeyType,
		Value: address,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrObjectNotFound) {
			r.logger.Debug().Str("account", address).Msg("account has no registry entry")
			return []string{}, nil
		}
		return nil, fmt.Errorf("query collections of %s: %w", address, err)
	}

	ids, err := collectionIDs(entry)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Str("account", address).Int("collections", len(ids)).Msg("resolved owned collections")
	return ids, nil
}

// Creators lists every account with an entry in the registry.
func (r *Resolver) Creators(ctx context.Context) ([]Creator, error) {
	tableID, err := r.TableID(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := r.reader.ListDynamicFields(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list registry entries: %w", err)
	}

	creators := make([]Creator, 0, len(fields))
	for _, field := range fields {
		address, ok := field.Name.Value.(string)
		if !ok || strings.TrimSpace(address) == "" {
			r.logger.Warn().Str("object_id", field.ObjectID).Msg("skipping registry entry without address key")
			continue
		}
		creators = append(creators, Creator{Address: address, ObjectID: field.ObjectID})
	}
	return creators, nil
}

// TableID returns the ID of the user_collections table. The value never
// changes for a registry, so it is read once and cached.
func (r *Resolver) TableID(ctx context.Context) (string, error) {
	r.mutex.RLock()
	cached := r.tableID
	r.mutex.RUnlock()
	if cached != "" {
		return cached, nil
	}

	registry, err := r.reader.GetObject(ctx, r.registryID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}

	table := move.Field(registry.Fields(), fieldUserCollections)
	if table.IsAbsent() {
		return "", MalformedError{ObjectID: r.registryID, Field: fieldUserCollections, Reason: "field is missing"}
	}
	rawTableID, ok := move.DecodeID(table)
	if !ok {
		return "", MalformedError{
			ObjectID: r.registryID,
			Field:    fieldUserCollections,
			Reason:   fmt.Sprintf("expected table with an id, found %s", table.Kind()),
		}
	}
	tableID, err := shared.NormalizeObjectID(rawTableID)
	if err != nil {
		return "", MalformedError{ObjectID: r.registryID, Field: fieldUserCollections, Reason: err.Error()}
	}

	r.mutex.Lock()
	r.tableID = tableID
	r.mutex.Unlock()
	return tableID, nil
}

func collectionIDs(entry ledger.Object) ([]string, error) {
	value := move.Field(entry.Fields(), fieldValue)
	if value.Kind() == move.KindRecord {
		value = move.Field(value, fieldValue)
	}
	if value.IsAbsent() {
		return nil, MalformedError{ObjectID: entry.ObjectID, Field: fieldValue, Reason: "field is missing"}
	}

	items, ok := move.DecodeList(value)
	if !ok {
		return nil, MalformedError{
			ObjectID: entry.ObjectID,
			Field:    fieldValue,
			Reason:   fmt.Sprintf("expected a list of collection IDs, found %s", value.Kind()),
		}
	}

	ids := make([]string, 0, len(items))
	for index, item := range items {
		rawID, ok := move.DecodeID(item)
		if !ok {
			return nil, MalformedError{
				ObjectID: entry.ObjectID,
				Field:    fmt.Sprintf("%s[%d]", fieldValue, index),
				Reason:   fmt.Sprintf("expected a collection ID, found %s", item.Kind()),
			}
		}
		id, err := shared.NormalizeObjectID(rawID)
		if err != nil {
			return nil, MalformedError{
				ObjectID: entry.ObjectID,
				Field:    fmt.Sprintf("%s[%d]", fieldValue, index),
				Reason:   err.Error(),
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
