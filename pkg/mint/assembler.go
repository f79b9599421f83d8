package mint

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

const (
	ModuleName               = "dropforge"
	FunctionMint             = "mint_nft"
	FunctionCreateCollection = "create_collection"
	FunctionLaunchToken      = "launch_token"

	// MaxRoyaltyBPS is 100% in basis points.
	MaxRoyaltyBPS = 10_000
	// MaxTokenDecimals bounds LaunchTokenParams.Decimals.
	MaxTokenDecimals = 18
)

type AssemblerConfig struct {
	PackageID  string
	RegistryID string
	// GasBudget is copied onto every transaction. Zero leaves budgeting to
	// the serializer.
	GasBudget uint64
}

// Assembler builds transactions against one deployment of the dropforge
// package.
type Assembler struct {
	packageID  string
	registryID string
	gasBudget  uint64
}

func NewAssembler(config AssemblerConfig) (*Assembler, error) {
	packageID, err := shared.NormalizeObjectID(config.PackageID)
	if err != nil {
		return nil, fmt.Errorf("invalid package ID: %w", err)
	}

	registryID := ""
	if strings.TrimSpace(config.RegistryID) != "" {
		registryID, err = shared.NormalizeObjectID(config.RegistryID)
		if err != nil {
			return nil, fmt.Errorf("invalid registry ID: %w", err)
		}
	}

	return &Assembler{
		packageID:  packageID,
		registryID: registryID,
		gasBudget:  config.GasBudget,
	}, nil
}

// NewAssemblerFromConfig builds an Assembler for the package and registry of
// a normalized shared.Config.
func NewAssemblerFromConfig(config shared.Config) (*Assembler, error) {
	return NewAssembler(AssemblerConfig{PackageID: config.PackageID, RegistryID: config.RegistryID})
}

func (a *Assembler) PackageID() string {
	return a.packageID
}

// AssembleMint splits price from the gas coin and calls mint_nft with the
// token's name, description and image URL, sending the token to payer.
func (a *Assembler) AssembleMint(
	collectionID string,
	item collection.TokenItem,
	payer string,
	price uint64,
) (Transaction, error) {
	normalizedCollectionID, err := shared.NormalizeObjectID(collectionID)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid collection ID: %w", err)
	}
	recipient, err := shared.NormalizeAddress(payer)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid payer: %w", err)
	}
	if strings.TrimSpace(item.Name) == "" {
		return Transaction{}, fmt.Errorf("token name is required")
	}
	if strings.TrimSpace(item.ImageURL) == "" {
		return Transaction{}, fmt.Errorf("token image URL is required")
	}

	transaction := Transaction{Sender: recipient, GasBudget: a.gasBudget}
	coin := transaction.splitCoins(
		Argument{Kind: ArgumentGasCoin},
		transaction.pure("u64", price),
	)
	transaction.moveCall(MoveCall{
		Package:  a.packageID,
		Module:   ModuleName,
		Function: FunctionMint,
		Arguments: []Argument{
			transaction.object(normalizedCollectionID),
			transaction.pure("string", item.Name),
			transaction.pure("string", item.Description),
			transaction.pure("string", item.ImageURL),
			coin,
			transaction.pure("address", recipient),
		},
	})
	return transaction, nil
}

type CreateCollectionParams struct {
	Name        string
	Description string
	MaxSupply   uint64
	RoyaltyBPS  uint16
	// BaseURI is the manifest reference, usually publisher.Result.ManifestURL.
	BaseURI   string
	MintPrice uint64
}

func (p CreateCollectionParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("collection name is required")
	}
	if p.MaxSupply == 0 {
		return fmt.Errorf("max supply must be positive")
	}
	if p.RoyaltyBPS > MaxRoyaltyBPS {
		return fmt.Errorf("royalty %d bps exceeds %d", p.RoyaltyBPS, MaxRoyaltyBPS)
	}
	if strings.TrimSpace(p.BaseURI) == "" {
		return fmt.Errorf("base URI is required")
	}
	return nil
}

// AssembleCreateCollection calls create_collection on the registry. Text
// arguments are passed as UTF-8 byte vectors.
func (a *Assembler) AssembleCreateCollection(sender string, params CreateCollectionParams) (Transaction, error) {
	if a.registryID == "" {
		return Transaction{}, fmt.Errorf("registry ID is required to create a collection")
	}
	normalizedSender, err := shared.NormalizeAddress(sender)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid sender: %w", err)
	}
	if err := params.validate(); err != nil {
		return Transaction{}, err
	}

	transaction := Transaction{Sender: normalizedSender, GasBudget: a.gasBudget}
	transaction.moveCall(MoveCall{
		Package:  a.packageID,
		Module:   ModuleName,
		Function: FunctionCreateCollection,
		Arguments: []Argument{
			transaction.object(a.registryID),
			transaction.pure("vector<u8>", []byte(params.Name)),
			transaction.pure("vector<u8>", []byte(params.Description)),
			transaction.pure("u64", params.MaxSupply),
			transaction.pure("u16", params.RoyaltyBPS),
			transaction.pure("vector<u8>", []byte(strings.TrimSpace(params.BaseURI))),
			transaction.pure("u64", params.MintPrice),
		},
	})
	return transaction, nil
}

type LaunchTokenParams struct {
	Name     string
	Symbol   string
	Decimals uint8
	// IconURL is usually the URL of an icon stored with Publisher.PublishAsset.
	IconURL string
	// InitialSupply is in whole tokens and is scaled by Decimals.
	InitialSupply uint64
	// MaxSupply is in base units. Zero means unlimited.
	MaxSupply uint64
}

func (p LaunchTokenParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("token name is required")
	}
	if strings.TrimSpace(p.Symbol) == "" {
		return fmt.Errorf("token symbol is required")
	}
	if p.Decimals > MaxTokenDecimals {
		return fmt.Errorf("decimals %d exceeds %d", p.Decimals, MaxTokenDecimals)
	}
	if p.InitialSupply == 0 {
		return fmt.Errorf("initial supply must be positive")
	}
	return nil
}

// BaseUnits returns InitialSupply scaled by 10^Decimals.
func (p LaunchTokenParams) BaseUnits() (uint64, error) {
	units := p.InitialSupply
	for range p.Decimals {
		high, low := bits.Mul64(units, 10)
		if high != 0 {
			return 0, fmt.Errorf("initial supply %d with %d decimals overflows u64", p.InitialSupply, p.Decimals)
		}
		units = low
	}
	return units, nil
}

// AssembleLaunchToken calls launch_token, minting the initial supply of a new
// fungible token to sender.
func (a *Assembler) AssembleLaunchToken(sender string, params LaunchTokenParams) (Transaction, error) {
	normalizedSender, err := shared.NormalizeAddress(sender)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid sender: %w", err)
	}
	if err := params.validate(); err != nil {
		return Transaction{}, err
	}
	supply, err := params.BaseUnits()
	if err != nil {
		return Transaction{}, err
	}
	if params.MaxSupply != 0 && params.MaxSupply < supply {
		return Transaction{}, fmt.Errorf("max supply %d is below the initial supply of %d base units", params.MaxSupply, supply)
	}

	transaction := Transaction{Sender: normalizedSender, GasBudget: a.gasBudget}
	transaction.moveCall(MoveCall{
		Package:  a.packageID,
		Module:   ModuleName,
		Function: FunctionLaunchToken,
		Arguments: []Argument{
			transaction.pure("string", strings.TrimSpace(params.Name)),
			transaction.pure("string", strings.TrimSpace(params.Symbol)),
			transaction.pure("u8", params.Decimals),
			transaction.pure("string", strings.TrimSpace(params.IconURL)),
			transaction.pure("u64", supply),
			transaction.pure("u64", params.MaxSupply),
		},
	})
	return transaction, nil
}
