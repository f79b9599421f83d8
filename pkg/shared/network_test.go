package shared

import (
	"testing"
)

func TestNormalizeNetworkMainnet(t *testing.T) {
	result, err := NormalizeNetwork("mainnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != NetworkMainnet {
		t.Fatalf("expected %q, got %q", NetworkMainnet, result)
	}
}

func TestNormalizeNetworkCaseInsensitive(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"MAINNET", NetworkMainnet},
		{"Testnet", NetworkTestnet},
		{"  devnet  ", NetworkDevnet},
		{"LocalNet", NetworkLocalnet},
	}

	for _, tc := range cases {
		result, err := NormalizeNetwork(tc.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.input, err)
		}
		if result != tc.expected {
			t.Fatalf("expected %q for input %q, got %q", tc.expected, tc.input, result)
		}
	}
}

func TestNormalizeNetworkEmpty(t *testing.T) {
	result, err := NormalizeNetwork("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != NetworkTestnet {
		t.Fatalf("expected %q for empty input, got %q", NetworkTestnet, result)
	}
}

func TestNormalizeNetworkUnsupported(t *testing.T) {
	_, err := NormalizeNetwork("badnet")
	if err == nil {
		t.Fatal("expected error for unsupported network")
	}
}

func TestDefaultsForTestnet(t *testing.T) {
	defaults, err := DefaultsFor("testnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if defaults.RPCURL != "https://fullnode.testnet.sui.io:443" {
		t.Fatalf("unexpected rpc url: %s", defaults.RPCURL)
	}
	if defaults.RegistryID == "" || defaults.PackageID == "" {
		t.Fatal("expected testnet deployment IDs")
	}
}
