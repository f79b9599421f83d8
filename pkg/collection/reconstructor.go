package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/blobstore"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/manifest"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/move"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldMaxSupply   = "max_supply"
	fieldMintedCount = "minted_count"
	fieldMintPrice   = "mint_price"
	fieldBaseURI     = "base_uri"
	fieldCreator     = "creator"
	fieldRoyaltyBPS  = "royalty_bps"

	defaultConcurrency = 4
)

// ObjectReader is the ledger query the reconstructor depends on.
type ObjectReader interface {
	GetObject(ctx context.Context, objectID string) (ledger.Object, error)
}

// ManifestSource fetches manifests and maps bare blob IDs to read URLs.
// *blobstore.Client and *blobstore.MemoryStore satisfy it.
type ManifestSource interface {
	blobstore.Fetcher
	URL(blobID string) string
	AggregatorURL() string
}

type Config struct {
	Reader ObjectReader
	Source ManifestSource
	// Concurrency bounds LoadCollections. Defaults to 4.
	Concurrency int
	Logger      *zerolog.Logger
}

type Reconstructor struct {
	reader      ObjectReader
	source      ManifestSource
	concurrency int
	logger      zerolog.Logger
}

// LoadResult is the outcome of loading one collection in LoadCollections.
type LoadResult struct {
	ID    string
	State State
	Err   error
}

// NewReconstructor creates a new Reconstructor.
func NewReconstructor(config Config) (*Reconstructor, error) {
	if config.Reader == nil {
		return nil, fmt.Errorf("object reader is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("manifest source is required")
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Reconstructor{
		reader:      config.Reader,
		source:      config.Source,
		concurrency: concurrency,
		logger:      shared.LoggerOrNop(config.Logger).With().Str("component", "collection").Logger(),
	}, nil
}

// LoadCollection reads the collection record and its manifest and derives
// the token list.
func (r *Reconstructor) LoadCollection(ctx context.Context, collectionID string) (State, error) {
	id, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return State{}, err
	}

	object, err := r.reader.GetObject(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrObjectNotFound) {
			return State{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return State{}, fmt.Errorf("read collection %s: %w", id, err)
	}

	record, err := DecodeRecord(id, object)
	if err != nil {
		return State{}, err
	}

	manifestURL := r.manifestURL(record.BaseURI)
	data, err := r.source.Fetch(ctx, manifestURL)
	if err != nil {
		return State{}, fmt.Errorf("fetch manifest of collection %s: %w", id, err)
	}

	entries, err := manifest.Decode(data)
	if err != nil {
		return State{}, fmt.Errorf("%w: collection %s: %w", ErrManifestEmpty, id, err)
	}
	entries = entries.Resolve(r.source.URL)

	state := State{
		Record:      record,
		Items:       buildItems(record, entries),
		ManifestURL: manifestURL,
		Warnings:    checkConsistency(record, len(entries)),
	}
	for _, warning := range state.Warnings {
		r.logger.Warn().Str("collection_id", id).Str("kind", warning.Kind).Msg(warning.Error())
	}

	r.logger.Debug().
		Str("collection_id", id).
		Int("tokens", len(state.Items)).
		Uint64("minted", record.MintedCount).
		Msg("collection loaded")
	return state, nil
}

// LoadCollections loads every collection concurrently. A failure is recorded
// on its own result and never prevents the others from loading. Results are
// returned in input order.
func (r *Reconstructor) LoadCollections(ctx context.Context, collectionIDs []string) []LoadResult {
	results := make([]LoadResult, len(collectionIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)
	for index, id := range collectionIDs {
		group.Go(func() error {
			state, err := r.LoadCollection(groupCtx, id)
			if err != nil {
				r.logger.Warn().Err(err).Str("collection_id", id).Msg("collection load failed")
			}
			results[index] = LoadResult{ID: id, State: state, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (r *Reconstructor) manifestURL(baseURI string) string {
	if blobstore.IsURL(baseURI) {
		return blobstore.CanonicalBlobURL(baseURI, r.source.AggregatorURL())
	}
	return r.source.URL(baseURI)
}

// DecodeRecord decodes a collection object. name, description, max_supply,
// minted_count, mint_price and base_uri are required; creator and
// royalty_bps are read when present.
func DecodeRecord(collectionID string, object ledger.Object) (Record, error) {
	fields := object.Fields()
	record := Record{ID: collectionID, Version: object.Version}

	var err error
	if record.Name, err = requiredText(collectionID, fields, fieldName); err != nil {
		return Record{}, err
	}
	if record.Description, err = requiredText(collectionID, fields, fieldDescription); err != nil {
		return Record{}, err
	}
	if record.MaxSupply, err = requiredUint(collectionID, fields, fieldMaxSupply); err != nil {
		return Record{}, err
	}
	if record.MaxSupply == 0 {
		return Record{}, MalformedError{CollectionID: collectionID, Field: fieldMaxSupply, Reason: "must be positive"}
	}
	if record.MintedCount, err = requiredUint(collectionID, fields, fieldMintedCount); err != nil {
		return Record{}, err
	}
	if record.MintPrice, err = requiredUint(collectionID, fields, fieldMintPrice); err != nil {
		return Record{}, err
	}
	if record.BaseURI, err = requiredText(collectionID, fields, fieldBaseURI); err != nil {
		return Record{}, err
	}
	if record.BaseURI == "" {
		return Record{}, MalformedError{CollectionID: collectionID, Field: fieldBaseURI, Reason: "manifest reference is empty"}
	}

	if creator, ok := move.DecodeID(move.Field(fields, fieldCreator)); ok {
		record.Creator = creator
	}
	if royalty, ok := move.DecodeUint64(move.Field(fields, fieldRoyaltyBPS)); ok {
		record.RoyaltyBPS = royalty
		record.HasRoyalty = true
	}

	return record, nil
}

func requiredText(collectionID string, fields move.Value, name string) (string, error) {
	value := move.Field(fields, name)
	if value.IsAbsent() {
		return "", MalformedError{CollectionID: collectionID, Field: name, Reason: "field is missing"}
	}
	text, ok := move.DecodeText(value)
	if !ok {
		return "", MalformedError{
			CollectionID: collectionID,
			Field:        name,
			Reason:       fmt.Sprintf("expected text, found %s", value.Kind()),
		}
	}
	return text, nil
}

func requiredUint(collectionID string, fields move.Value, name string) (uint64, error) {
	value := move.Field(fields, name)
	if value.IsAbsent() {
		return 0, MalformedError{CollectionID: collectionID, Field: name, Reason: "field is missing"}
	}
	number, ok := move.DecodeUint64(value)
	if !ok {
		return 0, MalformedError{
			CollectionID: collectionID,
			Field:        name,
			Reason:       fmt.Sprintf("expected u64, found %s", value.Kind()),
		}
	}
	return number, nil
}
