package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeFillsNetworkDefaults(t *testing.T) {
	config, err := Config{Network: "testnet"}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.PublisherURL != "https://publisher.walrus-testnet.walrus.space" {
		t.Fatalf("unexpected publisher url: %s", config.PublisherURL)
	}
	if config.AggregatorURL != "https://aggregator.walrus-testnet.walrus.space" {
		t.Fatalf("unexpected aggregator url: %s", config.AggregatorURL)
	}
	if config.Epochs != DefaultEpochs {
		t.Fatalf("expected default epochs, got %d", config.Epochs)
	}
}

func TestNormalizeKeepsOverrides(t *testing.T) {
	config, err := Config{
		Network:         "mainnet",
		NetworkEndpoint: "https://rpc.example.com/",
		PublisherURL:    "https://publisher.example.com",
		RegistryID:      "0xABC",
		Epochs:          12,
	}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.NetworkEndpoint != "https://rpc.example.com" {
		t.Fatalf("unexpected endpoint: %s", config.NetworkEndpoint)
	}
	if config.RegistryID != "0x0000000000000000000000000000000000000000000000000000000000000abc" {
		t.Fatalf("unexpected registry ID: %s", config.RegistryID)
	}
	if config.Epochs != 12 {
		t.Fatalf("unexpected epochs: %d", config.Epochs)
	}
}

func TestNormalizeRejectsInvalidValues(t *testing.T) {
	cases := []Config{
		{Network: "badnet"},
		{Network: "testnet", NetworkEndpoint: "ftp://rpc.example.com"},
		{Network: "testnet", AggregatorURL: "https://"},
		{Network: "testnet", RegistryID: "0xnothex"},
		{Network: "testnet", Epochs: -1},
	}

	for index, config := range cases {
		if _, err := config.Normalize(); err == nil {
			t.Fatalf("case %d: expected error", index)
		}
	}
}

func TestLoadConfigFileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dropforge.yaml")
	content := "network: devnet\nregistry_id: \"0x1\"\nepochs: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("DROPFORGE_NETWORK", "")
	t.Setenv("DROPFORGE_EPOCHS", "")
	t.Setenv("DROPFORGE_REGISTRY_ID", "")
	t.Setenv("DEVNET_DROPFORGE_PACKAGE_ID", "0x2")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Network != NetworkDevnet {
		t.Fatalf("unexpected network: %s", config.Network)
	}
	if config.Epochs != 3 {
		t.Fatalf("unexpected epochs: %d", config.Epochs)
	}
	if !SameObjectID(config.RegistryID, "0x1") {
		t.Fatalf("unexpected registry ID: %s", config.RegistryID)
	}
	if !SameObjectID(config.PackageID, "0x2") {
		t.Fatalf("unexpected package ID: %s", config.PackageID)
	}
}

func TestLoadConfigInvalidEpochs(t *testing.T) {
	t.Setenv("DROPFORGE_EPOCHS", "many")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for non-numeric epochs")
	}
}

func TestApplyDotEnvOnlySetsDropForgeKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n" +
		"export DROPFORGE_TEST_ONE=\"one\"\n" +
		"TESTNET_DROPFORGE_TEST_TWO='two'\n" +
		"DATABASE_URL=postgres://elsewhere\n" +
		"DROPFORGE_TEST_SET=from-file\n" +
		"not a setting\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	os.Unsetenv("DATABASE_URL")
	t.Setenv("DROPFORGE_TEST_SET", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("DROPFORGE_TEST_ONE")
		os.Unsetenv("TESTNET_DROPFORGE_TEST_TWO")
		os.Unsetenv("DATABASE_URL")
	})

	applied, err := applyDotEnv(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied settings, got %d", applied)
	}
	if os.Getenv("DROPFORGE_TEST_ONE") != "one" || os.Getenv("TESTNET_DROPFORGE_TEST_TWO") != "two" {
		t.Fatal("unexpected dotenv values")
	}
	if _, set := os.LookupEnv("DATABASE_URL"); set {
		t.Fatal("unrelated key should not be exported")
	}
	if os.Getenv("DROPFORGE_TEST_SET") != "from-env" {
		t.Fatal("existing environment should win over .env")
	}
}

func TestIsConfigEnvKey(t *testing.T) {
	cases := map[string]bool{
		"DROPFORGE_RPC_URL":         true,
		"MAINNET_DROPFORGE_EPOCHS":  true,
		"SUI_NETWORK":               true,
		"DROPFORGE_":                false,
		"HOME":                      false,
		"STAGING_DROPFORGE_RPC_URL": false,
		"dropforge_rpc_url":         false,
		"DROPFORGE_RPC-URL":         false,
		"AWS_SECRET_ACCESS_KEY":     false,
	}
	for key, expected := range cases {
		if got := isConfigEnvKey(key); got != expected {
			t.Fatalf("isConfigEnvKey(%q) = %v, expected %v", key, got, expected)
		}
	}
}

func TestFindDotEnvWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	envPath := filepath.Join(root, ".env")
	if err := os.WriteFile(envPath, []byte("DROPFORGE_NETWORK=devnet\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, ok := findDotEnv(nested)
	if !ok || found != envPath {
		t.Fatalf("expected %s, got %q (found=%v)", envPath, found, ok)
	}
}
