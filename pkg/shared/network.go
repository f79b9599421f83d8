package shared

import (
	"fmt"
	"strings"
)

const (
	NetworkMainnet  = "mainnet"
	NetworkTestnet  = "testnet"
	NetworkDevnet   = "devnet"
	NetworkLocalnet = "localnet"
)

// NetworkDefaults holds the well-known endpoints and deployment IDs of a network.
type NetworkDefaults struct {
	RPCURL        string
	PublisherURL  string
	AggregatorURL string
	PackageID     string
	RegistryID    string
}

var networkDefaults = map[string]NetworkDefaults{
	NetworkMainnet: {
		RPCURL:        "https://fullnode.mainnet.sui.io:443",
		AggregatorURL: "https://aggregator.walrus-mainnet.walrus.space",
	},
	NetworkTestnet: {
		RPCURL:        "https://fullnode.testnet.sui.io:443",
		PublisherURL:  "https://publisher.walrus-testnet.walrus.space",
		AggregatorURL: "https://aggregator.walrus-testnet.walrus.space",
		PackageID:     "0xaf8cf0e00bf66206133c890873eeaa0cdb0a9c5de1164a4cf6c16e284cb56ead",
		RegistryID:    "0x22eff8cb628e96baaf4a42fdf986013dfdb4600ef0b17bd5c354e0d789cd1cc7",
	},
	NetworkDevnet: {
		RPCURL:        "https://fullnode.devnet.sui.io:443",
		PublisherURL:  "https://publisher.walrus-testnet.walrus.space",
		AggregatorURL: "https://aggregator.walrus-testnet.walrus.space",
	},
	NetworkLocalnet: {
		RPCURL:        "http://127.0.0.1:9000",
		PublisherURL:  "http://127.0.0.1:31415",
		AggregatorURL: "http://127.0.0.1:31415",
	},
}

// NormalizeNetwork lower-cases and validates a network name. Empty input selects testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	if _, ok := networkDefaults[normalized]; !ok {
		return "", fmt.Errorf("unsupported network %q", network)
	}
	return normalized, nil
}

// DefaultsFor returns the built-in endpoints for the network.
func DefaultsFor(network string) (NetworkDefaults, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return NetworkDefaults{}, err
	}
	return networkDefaults[normalized], nil
}
