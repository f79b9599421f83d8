package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/mint"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/publisher"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/signer"
)

var commands = []command{
	{
		name:    "publish",
		summary: "upload files and their manifest",
		run:     runPublish,
		flags: func(flagSet *pflag.FlagSet) {
			flagSet.Int("concurrency", 1, "assets uploaded at once")
			flagSet.Bool("create", false, "also assemble the create_collection transaction")
			flagSet.String("name", "", "collection name (with --create)")
			flagSet.String("description", "", "collection description (with --create)")
			flagSet.Uint64("max-supply", 0, "max supply, defaults to the number of files (with --create)")
			flagSet.Uint16("royalty-bps", 0, "royalty in basis points (with --create)")
			flagSet.Uint64("mint-price", 0, "mint price in the smallest unit (with --create)")
			flagSet.String("sender", "", "sender address, defaults to the operator key's address")
		},
	},
	{
		name:    "collections",
		summary: "list the collections owned by an account",
		run:     runCollections,
		flags: func(flagSet *pflag.FlagSet) {
			flagSet.Bool("load", false, "reconstruct each collection")
		},
	},
	{
		name:    "show",
		summary: "reconstruct one collection with its token items",
		run:     runShow,
	},
	{
		name:    "mint-tx",
		summary: "assemble the mint transaction for one token",
		run:     runMintTransaction,
		flags: func(flagSet *pflag.FlagSet) {
			flagSet.String("payer", "", "payer and recipient, defaults to the operator key's address")
		},
	},
	{
		name:    "launch-token",
		summary: "assemble a launch_token transaction, uploading the icon file",
		run:     runLaunchToken,
		flags: func(flagSet *pflag.FlagSet) {
			flagSet.String("name", "", "token name")
			flagSet.String("symbol", "", "token symbol")
			flagSet.Uint8("decimals", 9, "decimal places")
			flagSet.Uint64("supply", 0, "initial supply in whole tokens")
			flagSet.Uint64("max-supply", 0, "max supply in base units, 0 for unlimited")
			flagSet.String("icon-url", "", "icon URL, used when no icon file is given")
			flagSet.String("sender", "", "sender address, defaults to the operator key's address")
		},
	},
	{
		name:    "creators",
		summary: "list every account with an entry in the registry",
		run:     runCreators,
	},
}

type assetOutput struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	BlobID string `json:"blobId"`
	URL    string `json:"url"`
}

type publishOutput struct {
	ManifestBlobID string            `json:"manifestBlobId"`
	ManifestURL    string            `json:"manifestUrl"`
	Assets         []assetOutput     `json:"assets"`
	Transaction    *mint.Transaction `json:"transaction,omitempty"`
}

type launchTokenOutput struct {
	Icon        *assetOutput     `json:"icon,omitempty"`
	Transaction mint.Transaction `json:"transaction"`
}

type collectionOutput struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name,omitempty"`
	Description  string                 `json:"description,omitempty"`
	MaxSupply    uint64                 `json:"maxSupply"`
	MintedCount  uint64                 `json:"mintedCount"`
	Remaining    uint64                 `json:"remaining"`
	MintPrice    uint64                 `json:"mintPrice"`
	Creator      string                 `json:"creator,omitempty"`
	RoyaltyBPS   *uint64                `json:"royaltyBps,omitempty"`
	ManifestURL  string                 `json:"manifestUrl,omitempty"`
	PreviewImage string                 `json:"previewImage,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
	Items        []collection.TokenItem `json:"items,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

func describeCollection(state collection.State, withItems bool) collectionOutput {
	described := collectionOutput{
		ID:           state.Record.ID,
		Name:         state.Record.Name,
		Description:  state.Record.Description,
		MaxSupply:    state.Record.MaxSupply,
		MintedCount:  state.Record.MintedCount,
		Remaining:    state.Remaining(),
		MintPrice:    state.Record.MintPrice,
		Creator:      state.Record.Creator,
		ManifestURL:  state.ManifestURL,
		PreviewImage: state.PreviewImage(),
	}
	if state.Record.HasRoyalty {
		royalty := state.Record.RoyaltyBPS
		described.RoyaltyBPS = &royalty
	}
	for _, warning := range state.Warnings {
		described.Warnings = append(described.Warnings, warning.Error())
	}
	if withItems {
		described.Items = state.Items
	}
	return described
}

func runPublish(ctx context.Context, env *environment, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("publish needs at least one file")
	}
	flagSet := env.flags

	assets := make([]publisher.Asset, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		assets = append(assets, publisher.Asset{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
			Data:        data,
		})
	}

	concurrency, _ := flagSet.GetInt("concurrency")
	assetPublisher, err := publisher.New(publisher.Config{
		Store:       env.store,
		Concurrency: concurrency,
		Logger:      &env.logger,
	})
	if err != nil {
		return err
	}

	result, err := assetPublisher.Publish(ctx, assets, publisher.Options{
		ProgressCallback: func(progress publisher.Progress) {
			env.logger.Info().
				Str("stage", progress.Stage).
				Int("percentage", progress.Percentage).
				Str("blob_id", progress.BlobID).
				Msg("publish progress")
		},
	})
	if err != nil {
		return err
	}

	published := publishOutput{
		ManifestBlobID: result.ManifestRef.BlobID,
		ManifestURL:    result.ManifestURL,
		Assets:         make([]assetOutput, 0, len(result.Assets)),
	}
	for _, asset := range result.Assets {
		published.Assets = append(published.Assets, assetOutput{
			Index:  asset.Index,
			Name:   asset.Name,
			BlobID: asset.Ref.BlobID,
			URL:    asset.URL,
		})
	}

	if create, _ := flagSet.GetBool("create"); create {
		transaction, err := assembleCreateCollection(env, len(assets), result.ManifestURL)
		if err != nil {
			return err
		}
		published.Transaction = &transaction
	}
	return env.print(published)
}

func assembleCreateCollection(env *environment, assetCount int, manifestURL string) (mint.Transaction, error) {
	flagSet := env.flags
	assembler, err := mint.NewAssemblerFromConfig(env.config)
	if err != nil {
		return mint.Transaction{}, err
	}
	sender, err := senderAddress(env, "sender")
	if err != nil {
		return mint.Transaction{}, err
	}

	name, _ := flagSet.GetString("name")
	description, _ := flagSet.GetString("description")
	maxSupply, _ := flagSet.GetUint64("max-supply")
	royalty, _ := flagSet.GetUint16("royalty-bps")
	price, _ := flagSet.GetUint64("mint-price")
	if maxSupply == 0 {
		maxSupply = uint64(assetCount)
	}

	return assembler.AssembleCreateCollection(sender, mint.CreateCollectionParams{
		Name:        name,
		Description: description,
		MaxSupply:   maxSupply,
		RoyaltyBPS:  royalty,
		BaseURI:     manifestURL,
		MintPrice:   price,
	})
}

func runCollections(ctx context.Context, env *environment, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("collections needs exactly one account address")
	}
	resolver, err := env.resolver()
	if err != nil {
		return err
	}
	ids, err := resolver.ResolveOwnedCollections(ctx, args[0])
	if err != nil {
		return err
	}

	if load, _ := env.flags.GetBool("load"); !load {
		return env.print(ids)
	}

	results := env.reconstructor.LoadCollections(ctx, ids)
	described := make([]collectionOutput, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			described = append(described, collectionOutput{ID: result.ID, Error: result.Err.Error()})
			continue
		}
		described = append(described, describeCollection(result.State, false))
	}
	return env.print(described)
}

func runShow(ctx context.Context, env *environment, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show needs exactly one collection ID")
	}
	state, err := env.reconstructor.LoadCollection(ctx, args[0])
	if err != nil {
		return err
	}
	return env.print(describeCollection(state, true))
}

func runMintTransaction(ctx context.Context, env *environment, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("mint-tx needs a collection ID and a token ordinal")
	}
	ordinal, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid ordinal %q: %w", args[1], err)
	}
	payer, err := senderAddress(env, "payer")
	if err != nil {
		return err
	}
	assembler, err := mint.NewAssemblerFromConfig(env.config)
	if err != nil {
		return err
	}

	state, err := env.reconstructor.LoadCollection(ctx, args[0])
	if err != nil {
		return err
	}
	request, err := mint.NewMintRequest(state, ordinal, payer)
	if err != nil {
		return err
	}
	transaction, err := assembler.AssembleMint(request.CollectionID, request.Item, request.Payer, request.Price)
	if err != nil {
		return err
	}
	return env.print(transaction)
}

func runLaunchToken(ctx context.Context, env *environment, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("launch-token takes at most one icon file")
	}
	flagSet := env.flags
	assembler, err := mint.NewAssemblerFromConfig(env.config)
	if err != nil {
		return err
	}
	sender, err := senderAddress(env, "sender")
	if err != nil {
		return err
	}

	params := mint.LaunchTokenParams{}
	params.Name, _ = flagSet.GetString("name")
	params.Symbol, _ = flagSet.GetString("symbol")
	params.Decimals, _ = flagSet.GetUint8("decimals")
	params.InitialSupply, _ = flagSet.GetUint64("supply")
	params.MaxSupply, _ = flagSet.GetUint64("max-supply")
	params.IconURL, _ = flagSet.GetString("icon-url")

	output := launchTokenOutput{}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		assetPublisher, err := publisher.New(publisher.Config{Store: env.store, Logger: &env.logger})
		if err != nil {
			return err
		}
		icon, err := assetPublisher.PublishAsset(ctx, publisher.Asset{
			Name:        filepath.Base(args[0]),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0]))),
			Data:        data,
		})
		if err != nil {
			return err
		}
		params.IconURL = icon.URL
		output.Icon = &assetOutput{Index: icon.Index, Name: icon.Name, BlobID: icon.Ref.BlobID, URL: icon.URL}
	}

	output.Transaction, err = assembler.AssembleLaunchToken(sender, params)
	if err != nil {
		return err
	}
	return env.print(output)
}

func runCreators(ctx context.Context, env *environment, args []string) error {
	resolver, err := env.resolver()
	if err != nil {
		return err
	}
	creators, err := resolver.Creators(ctx)
	if err != nil {
		return err
	}
	return env.print(creators)
}

// senderAddress returns the address flag, or the address of the configured
// operator key when the flag is empty.
func senderAddress(env *environment, flag string) (string, error) {
	if address, _ := env.flags.GetString(flag); strings.TrimSpace(address) != "" {
		return address, nil
	}
	if env.config.OperatorKey == "" {
		return "", fmt.Errorf("pass --%s or configure an operator key", flag)
	}
	keypair, err := signer.ParsePrivateKey(env.config.OperatorKey)
	if err != nil {
		return "", fmt.Errorf("invalid operator key: %w", err)
	}
	return keypair.Address(), nil
}
