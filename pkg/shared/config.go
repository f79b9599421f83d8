package shared

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultEpochs is the storage duration requested for new blobs.
const DefaultEpochs = 5

// Config is the explicit network configuration handed to every component.
type Config struct {
	Network         string `yaml:"network"`
	NetworkEndpoint string `yaml:"rpc_url"`
	PackageID       string `yaml:"package_id"`
	RegistryID      string `yaml:"registry_id"`
	PublisherURL    string `yaml:"publisher_url"`
	AggregatorURL   string `yaml:"aggregator_url"`
	Epochs          int    `yaml:"epochs"`
	OperatorKey     string `yaml:"operator_key"`
}

var dotenvLoadOnce sync.Once

// ConfigFromEnv builds a normalized Config from environment variables only.
func ConfigFromEnv() (Config, error) {
	return LoadConfig("")
}

// LoadConfig reads the YAML file at path (or DROPFORGE_CONFIG when path is
// empty), overlays environment variables and normalizes the result.
func LoadConfig(path string) (Config, error) {
	loadDotEnvIfPresent()

	config := Config{}
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("DROPFORGE_CONFIG"))
	}
	if path != "" {
		fileConfig, err := LoadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		config = fileConfig
	}

	config, err := config.withEnv()
	if err != nil {
		return Config{}, err
	}
	return config.Normalize()
}

// LoadConfigFile parses a YAML config file without applying defaults.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

func (c Config) withEnv() (Config, error) {
	if network := firstNonEmptyEnv("DROPFORGE_NETWORK", "SUI_NETWORK"); network != "" {
		c.Network = network
	}

	prefix := ""
	if network, err := NormalizeNetwork(c.Network); err == nil {
		prefix = strings.ToUpper(network) + "_"
	}

	scoped := func(name string) string {
		return firstNonEmptyEnv(prefix+name, name)
	}

	if value := scoped("DROPFORGE_RPC_URL"); value != "" {
		c.NetworkEndpoint = value
	}
	if value := scoped("DROPFORGE_PACKAGE_ID"); value != "" {
		c.PackageID = value
	}
	if value := scoped("DROPFORGE_REGISTRY_ID"); value != "" {
		c.RegistryID = value
	}
	if value := scoped("DROPFORGE_PUBLISHER_URL"); value != "" {
		c.PublisherURL = value
	}
	if value := scoped("DROPFORGE_AGGREGATOR_URL"); value != "" {
		c.AggregatorURL = value
	}
	if value := scoped("DROPFORGE_OPERATOR_KEY"); value != "" {
		c.OperatorKey = value
	}
	if value := scoped("DROPFORGE_EPOCHS"); value != "" {
		epochs, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("DROPFORGE_EPOCHS must be an integer: %w", err)
		}
		c.Epochs = epochs
	}

	return c, nil
}

// Normalize fills network defaults and validates every configured value.
func (c Config) Normalize() (Config, error) {
	network, err := NormalizeNetwork(c.Network)
	if err != nil {
		return Config{}, err
	}
	defaults := networkDefaults[network]
	c.Network = network

	if strings.TrimSpace(c.NetworkEndpoint) == "" {
		c.NetworkEndpoint = defaults.RPCURL
	}
	if strings.TrimSpace(c.PublisherURL) == "" {
		c.PublisherURL = defaults.PublisherURL
	}
	if strings.TrimSpace(c.AggregatorURL) == "" {
		c.AggregatorURL = defaults.AggregatorURL
	}
	if strings.TrimSpace(c.PackageID) == "" {
		c.PackageID = defaults.PackageID
	}
	if strings.TrimSpace(c.RegistryID) == "" {
		c.RegistryID = defaults.RegistryID
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.Epochs < 0 {
		return Config{}, fmt.Errorf("epochs cannot be negative")
	}

	if c.NetworkEndpoint, err = NormalizeBaseURL(c.NetworkEndpoint); err != nil {
		return Config{}, fmt.Errorf("invalid rpc url: %w", err)
	}
	if c.PublisherURL != "" {
		if c.PublisherURL, err = NormalizeBaseURL(c.PublisherURL); err != nil {
			return Config{}, fmt.Errorf("invalid publisher url: %w", err)
		}
	}
	if c.AggregatorURL, err = NormalizeBaseURL(c.AggregatorURL); err != nil {
		return Config{}, fmt.Errorf("invalid aggregator url: %w", err)
	}
	if c.PackageID != "" {
		if c.PackageID, err = NormalizeObjectID(c.PackageID); err != nil {
			return Config{}, fmt.Errorf("invalid package ID: %w", err)
		}
	}
	if c.RegistryID != "" {
		if c.RegistryID, err = NormalizeObjectID(c.RegistryID); err != nil {
			return Config{}, fmt.Errorf("invalid registry ID: %w", err)
		}
	}
	c.OperatorKey = strings.TrimSpace(c.OperatorKey)

	return c, nil
}

// NormalizeBaseURL validates an http(s) URL and strips trailing slashes.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", fmt.Errorf("url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("host is required")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// loadDotEnvIfPresent applies the nearest .env above the working directory.
func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			return
		}
		if path, ok := findDotEnv(cwd); ok {
			_, _ = applyDotEnv(path)
		}
	})
}

func findDotEnv(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// applyDotEnv sets the DropForge settings found in a .env file and returns
// how many were applied. Variables already present in the environment win,
// and keys that do not configure DropForge are ignored.
func applyDotEnv(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	applied := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok || !isConfigEnvKey(key) {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("setting %s from %s: %w", key, path, err)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("reading %s: %w", path, err)
	}
	return applied, nil
}

func parseDotEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return key, value, key != ""
}

// isConfigEnvKey accepts the keys withEnv reads: SUI_NETWORK, DROPFORGE_*
// and their network-scoped forms such as TESTNET_DROPFORGE_RPC_URL.
func isConfigEnvKey(key string) bool {
	if key == "SUI_NETWORK" {
		return true
	}
	name := key
	if network, rest, found := strings.Cut(key, "_"); found {
		if _, known := networkDefaults[strings.ToLower(network)]; known && network == strings.ToUpper(network) {
			name = rest
		}
	}
	suffix, ok := strings.CutPrefix(name, "DROPFORGE_")
	if !ok || suffix == "" {
		return false
	}
	for _, character := range suffix {
		if (character < 'A' || character > 'Z') && (character < '0' || character > '9') && character != '_' {
			return false
		}
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}
