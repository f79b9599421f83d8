package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/blobstore"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/manifest"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

const (
	StageUploadingAssets   = "uploading-assets"
	StageAssetVerified     = "asset-verified"
	StageUploadingManifest = "uploading-manifest"
	StageVerifyingManifest = "verifying-manifest"
	StageComplete          = "complete"
)

// Asset is one image of the batch.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// AssetResult is a stored and verified asset.
type AssetResult struct {
	Index int
	Name  string
	Ref   blobstore.BlobRef
	URL   string
}

// Result is the outcome of a successful publish.
type Result struct {
	ManifestRef blobstore.BlobRef
	ManifestURL string
	Manifest    manifest.Manifest
	Assets      []AssetResult
}

type Progress struct {
	Stage      string
	Percentage int
	Index      int
	Total      int
	BlobID     string
}

type Options struct {
	// ProgressCallback is invoked from upload goroutines when Concurrency > 1.
	ProgressCallback func(Progress)
}

type Config struct {
	Store blobstore.Store
	// Concurrency > 1 uploads that many assets at once. Each asset is still
	// probed right after its own put.
	Concurrency int
	Logger      *zerolog.Logger
}

type Publisher struct {
	store       blobstore.Store
	concurrency int
	logger      zerolog.Logger
}

// New creates a Publisher.
func New(config Config) (*Publisher, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Publisher{
		store:       config.Store,
		concurrency: concurrency,
		logger:      shared.LoggerOrNop(config.Logger).With().Str("component", "publisher").Logger(),
	}, nil
}

// Publish stores every asset, verifies it, then stores and verifies the
// manifest that lists them in input order.
func (p *Publisher) Publish(ctx context.Context, assets []Asset, options Options) (Result, error) {
	if len(assets) == 0 {
		return Result{}, ErrNoAssets
	}

	uploaded, err := p.uploadAssets(ctx, assets, options.ProgressCallback)
	if err != nil {
		return Result{}, err
	}

	entries := make(manifest.Manifest, len(uploaded))
	for index, asset := range uploaded {
		entries[index] = asset.URL
	}

	encoded, err := manifest.Encode(entries)
	if err != nil {
		return Result{}, fmt.Errorf("encode manifest: %w", err)
	}

	reportProgress(options.ProgressCallback, Progress{
		Stage:      StageUploadingManifest,
		Percentage: 85,
		Total:      len(assets),
	})

	manifestRef, err := p.store.Put(ctx, encoded, manifest.ContentType)
	if err != nil {
		return Result{}, fmt.Errorf("upload manifest: %w", err)
	}

	reportProgress(options.ProgressCallback, Progress{
		Stage:      StageVerifyingManifest,
		Percentage: 95,
		Total:      len(assets),
		BlobID:     manifestRef.BlobID,
	})

	if err := p.verifyManifest(ctx, manifestRef.BlobID, entries); err != nil {
		return Result{}, err
	}

	result := Result{
		ManifestRef: manifestRef,
		ManifestURL: p.store.URL(manifestRef.BlobID),
		Manifest:    entries,
		Assets:      uploaded,
	}

	p.logger.Info().
		Str("blob_id", manifestRef.BlobID).
		Int("assets", len(uploaded)).
		Msg("manifest published")
	reportProgress(options.ProgressCallback, Progress{
		Stage:      StageComplete,
		Percentage: 100,
		Total:      len(assets),
		BlobID:     manifestRef.BlobID,
	})

	return result, nil
}

// PublishAsset stores and verifies a single asset without writing a
// manifest. Launch flows use it for token icons.
func (p *Publisher) PublishAsset(ctx context.Context, asset Asset) (AssetResult, error) {
	if len(asset.Data) == 0 {
		return AssetResult{}, fmt.Errorf("asset%s has no data", describeName(asset.Name))
	}
	result, err := p.uploadAsset(ctx, 0, asset, 1, nil)
	if err != nil {
		return AssetResult{}, err
	}
	p.logger.Info().Str("blob_id", result.Ref.BlobID).Str("name", asset.Name).Msg("asset published")
	return result, nil
}

func (p *Publisher) uploadAssets(
	ctx context.Context,
	assets []Asset,
	callback func(Progress),
) ([]AssetResult, error) {
	results := make([]AssetResult, len(assets))

	if p.concurrency == 1 {
		for index, asset := range assets {
			result, err := p.uploadAsset(ctx, index, asset, len(assets), callback)
			if err != nil {
				return nil, err
			}
			results[index] = result
		}
		return results, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for index, asset := range assets {
		group.Go(func() error {
			result, err := p.uploadAsset(groupCtx, index, asset, len(assets), callback)
			if err != nil {
				return err
			}
			results[index] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Publisher) uploadAsset(
	ctx context.Context,
	index int,
	asset Asset,
	total int,
	callback func(Progress),
) (AssetResult, error) {
	reportProgress(callback, Progress{
		Stage:      StageUploadingAssets,
		Percentage: assetPercentage(index, total),
		Index:      index,
		Total:      total,
	})

	contentType := strings.TrimSpace(asset.ContentType)
	if contentType == "" && len(asset.Data) > 0 {
		contentType = http.DetectContentType(asset.Data)
	}

	ref, err := p.store.Put(ctx, asset.Data, contentType)
	if err != nil {
		p.logger.Warn().Err(err).Int("index", index).Msg("asset upload failed")
		return AssetResult{}, AssetUploadError{Index: index, Name: asset.Name, Err: err}
	}

	exists, err := p.store.Exists(ctx, ref.BlobID)
	if err != nil || !exists {
		p.logger.Warn().Err(err).Int("index", index).Str("blob_id", ref.BlobID).Msg("asset verification failed")
		return AssetResult{}, VerificationFailedError{Index: index, Name: asset.Name, BlobID: ref.BlobID, Err: err}
	}

	result := AssetResult{
		Index: index,
		Name:  asset.Name,
		Ref:   ref,
		URL:   p.store.URL(ref.BlobID),
	}

	p.logger.Debug().Int("index", index).Str("blob_id", ref.BlobID).Msg("asset verified")
	reportProgress(callback, Progress{
		Stage:      StageAssetVerified,
		Percentage: assetPercentage(index+1, total),
		Index:      index,
		Total:      total,
		BlobID:     ref.BlobID,
	})
	return result, nil
}

func (p *Publisher) verifyManifest(ctx context.Context, blobID string, expected manifest.Manifest) error {
	data, err := p.store.Get(ctx, blobID)
	if err != nil {
		return ManifestIntegrityError{BlobID: blobID, ExpectedLength: len(expected), Err: err}
	}

	actual, err := manifest.Decode(data)
	if err != nil {
		return ManifestIntegrityError{BlobID: blobID, ExpectedLength: len(expected), Err: err}
	}

	if !manifest.Equal(expected, actual) {
		return ManifestIntegrityError{BlobID: blobID, ExpectedLength: len(expected), ActualLength: len(actual)}
	}
	return nil
}

func assetPercentage(done int, total int) int {
	if total == 0 {
		return 0
	}
	return done * 80 / total
}

func reportProgress(callback func(Progress), progress Progress) {
	if callback != nil {
		callback(progress)
	}
}
