package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/blobstore"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/collection"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/registry"
	"github.com/dropforge-labs/dropforge-sdk-go/pkg/shared"
)

var output = jsoniter.Config{EscapeHTML: false, SortMapKeys: true}.Froze()

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *environment, args []string) error
	flags   func(flagSet *pflag.FlagSet)
}

// commonFlags are accepted by every command and override the config file and
// environment.
type commonFlags struct {
	configPath    string
	network       string
	rpcURL        string
	packageID     string
	registryID    string
	publisherURL  string
	aggregatorURL string
	epochs        int
	logLevel      string
	logFormat     string
}

func (f *commonFlags) add(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default $DROPFORGE_CONFIG)")
	flagSet.StringVar(&f.network, "network", "", "network: mainnet, testnet, devnet or localnet")
	flagSet.StringVar(&f.rpcURL, "rpc-url", "", "ledger full node JSON-RPC URL")
	flagSet.StringVar(&f.packageID, "package-id", "", "dropforge package ID")
	flagSet.StringVar(&f.registryID, "registry-id", "", "collection registry object ID")
	flagSet.StringVar(&f.publisherURL, "publisher-url", "", "blob store publisher URL")
	flagSet.StringVar(&f.aggregatorURL, "aggregator-url", "", "blob store aggregator URL")
	flagSet.IntVar(&f.epochs, "epochs", 0, "storage epochs for new blobs")
	flagSet.StringVar(&f.logLevel, "log-level", "warn", "log level")
	flagSet.StringVar(&f.logFormat, "log-format", "console", "log format: console or json")
}

func (f *commonFlags) config() (shared.Config, error) {
	config, err := shared.LoadConfig(f.configPath)
	if err != nil {
		return shared.Config{}, err
	}

	if f.network != "" {
		network, err := shared.NormalizeNetwork(f.network)
		if err != nil {
			return shared.Config{}, err
		}
		if network != config.Network {
			// Switching networks drops endpoints and IDs of the loaded one.
			config = shared.Config{Network: network, Epochs: config.Epochs, OperatorKey: config.OperatorKey}
		}
	}

	overrides := []struct {
		value  string
		target *string
	}{
		{f.rpcURL, &config.NetworkEndpoint},
		{f.packageID, &config.PackageID},
		{f.registryID, &config.RegistryID},
		{f.publisherURL, &config.PublisherURL},
		{f.aggregatorURL, &config.AggregatorURL},
	}
	for _, override := range overrides {
		if strings.TrimSpace(override.value) != "" {
			*override.target = override.value
		}
	}
	if f.epochs != 0 {
		config.Epochs = f.epochs
	}
	return config.Normalize()
}

// environment is the wired set of clients a command runs against.
type environment struct {
	config shared.Config
	logger zerolog.Logger
	stdout io.Writer
	flags  *pflag.FlagSet

	ledger        *ledger.Client
	store         *blobstore.Client
	reconstructor *collection.Reconstructor
}

func newEnvironment(config shared.Config, logger zerolog.Logger, stdout io.Writer) (*environment, error) {
	ledgerClient, err := ledger.NewClient(ledger.Config{
		Network:  config.Network,
		Endpoint: config.NetworkEndpoint,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}
	store, err := blobstore.NewClient(blobstore.Config{
		Network:       config.Network,
		PublisherURL:  config.PublisherURL,
		AggregatorURL: config.AggregatorURL,
		Epochs:        config.Epochs,
		Logger:        &logger,
	})
	if err != nil {
		return nil, err
	}
	reconstructor, err := collection.NewReconstructor(collection.Config{
		Reader: ledgerClient,
		Source: store,
		Logger: &logger,
	})
	if err != nil {
		return nil, err
	}

	return &environment{
		config:        config,
		logger:        logger,
		stdout:        stdout,
		ledger:        ledgerClient,
		store:         store,
		reconstructor: reconstructor,
	}, nil
}

func (e *environment) resolver() (*registry.Resolver, error) {
	if e.config.RegistryID == "" {
		return nil, fmt.Errorf("no registry ID configured for %s; pass --registry-id", e.config.Network)
	}
	return registry.NewResolver(registry.Config{
		Reader:     e.ledger,
		RegistryID: e.config.RegistryID,
		Logger:     &e.logger,
	})
}

func (e *environment) print(value any) error {
	encoded, err := output.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, string(encoded))
	return err
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		return nil
	}

	var selected *command
	for index := range commands {
		if commands[index].name == args[0] {
			selected = &commands[index]
			break
		}
	}
	if selected == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	var common commonFlags
	flagSet := pflag.NewFlagSet("dropforge "+selected.name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	common.add(flagSet)
	if selected.flags != nil {
		selected.flags(flagSet)
	}
	if err := flagSet.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	config, err := common.config()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(stderr, common.logLevel, common.logFormat)
	env, err := newEnvironment(config, logger, stdout)
	if err != nil {
		return err
	}
	env.flags = flagSet
	return selected.run(ctx, env, flagSet.Args())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dropforge <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, entry := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", entry.name, entry.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dropforge <command> --help' for the flags of a command.")
}
