// Package config loads the runtime configuration for the contract manager
// from a YAML file, environment variables, or both. Env vars override file
// values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/contracts"
)

// SignerConfig selects and configures the signing authority. Exactly one of
// PrivateKey and WalletURL must be set.
//
// WARNING: PrivateKey is a secret and must not be logged or committed in
// file configuration.
type SignerConfig struct {
	PrivateKey string `mapstructure:"private_key" yaml:"private_key"` // Secret: hex private key for the fixed-endpoint signer
	WalletURL  string `mapstructure:"wallet_url" yaml:"wallet_url"`   // URL of the external wallet endpoint for delegated signing
}

// NetworkConfig describes the target chain.
type NetworkConfig struct {
	ChainID          uint64   `mapstructure:"chain_id" yaml:"chain_id"`
	DisplayName      string   `mapstructure:"display_name" yaml:"display_name"`
	RPCURL           string   `mapstructure:"rpc_url" yaml:"rpc_url"`
	BackupRPCURLs    []string `mapstructure:"backup_rpc_urls" yaml:"backup_rpc_urls,omitempty"`
	CurrencyName     string   `mapstructure:"currency_name" yaml:"currency_name"`
	CurrencySymbol   string   `mapstructure:"currency_symbol" yaml:"currency_symbol"`
	CurrencyDecimals uint8    `mapstructure:"currency_decimals" yaml:"currency_decimals"`
	BlockExplorerURL string   `mapstructure:"block_explorer_url" yaml:"block_explorer_url"`
}

// Endpoint converts the network configuration into a chain endpoint.
func (c NetworkConfig) Endpoint() chain.Endpoint {
	return chain.Endpoint{
		ChainID:          c.ChainID,
		DisplayName:      c.DisplayName,
		RPCURL:           c.RPCURL,
		BlockExplorerURL: c.BlockExplorerURL,
		NativeCurrency: chain.NativeCurrency{
			Name:     c.CurrencyName,
			Symbol:   c.CurrencySymbol,
			Decimals: c.CurrencyDecimals,
		},
	}
}

// RegistryConfig configures the configuration service client. URL selects
// the hosted HTTP service; FilePath selects the local TOML file service.
//
// WARNING: APIKey is a secret and must not be logged or committed in file
// configuration.
type RegistryConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"` // Secret
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
}

// Config is the full runtime configuration.
type Config struct {
	Family   contracts.Family `mapstructure:"family" yaml:"family"`
	Signer   SignerConfig     `mapstructure:"signer" yaml:"signer"`
	Network  NetworkConfig    `mapstructure:"network" yaml:"network"`
	Registry RegistryConfig   `mapstructure:"registry" yaml:"registry"`
	LogLevel string           `mapstructure:"log_level" yaml:"log_level"`
}

// Validate checks the configuration for the contradictions the loader cannot
// express: a missing or doubled signer, a missing registry backend, and an
// endpoint the chain package rejects.
func (c *Config) Validate() error {
	if err := c.Family.Validate(); err != nil {
		return err
	}

	hasKey := c.Signer.PrivateKey != ""
	hasWallet := c.Signer.WalletURL != ""
	if hasKey == hasWallet {
		return errors.New("exactly one of signer.private_key and signer.wallet_url must be set")
	}

	if (c.Registry.URL != "") == (c.Registry.FilePath != "") {
		return errors.New("exactly one of registry.url and registry.file_path must be set")
	}

	if err := c.Network.Endpoint().Validate(); err != nil {
		return fmt.Errorf("invalid network: %w", err)
	}

	return nil
}

// Load loads the config from the file path, falling back to env vars if the
// file does not exist. Env vars that are set override file values.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables alone.
func LoadEnv() (*Config, error) {
	v := viper.New()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// envBindings maps config keys to the environment variables that can supply
// them. Viper checks the listed variables in order and uses the first set.
var envBindings = map[string][]string{
	"family":                     {"CM_FAMILY"},
	"signer.private_key":         {"CM_SIGNER_PRIVATE_KEY"},
	"signer.wallet_url":          {"CM_SIGNER_WALLET_URL"},
	"network.chain_id":           {"CM_NETWORK_CHAIN_ID"},
	"network.display_name":       {"CM_NETWORK_DISPLAY_NAME"},
	"network.rpc_url":            {"CM_NETWORK_RPC_URL"},
	"network.backup_rpc_urls":    {"CM_NETWORK_BACKUP_RPC_URLS"},
	"network.currency_name":      {"CM_NETWORK_CURRENCY_NAME"},
	"network.currency_symbol":    {"CM_NETWORK_CURRENCY_SYMBOL"},
	"network.currency_decimals":  {"CM_NETWORK_CURRENCY_DECIMALS"},
	"network.block_explorer_url": {"CM_NETWORK_BLOCK_EXPLORER_URL"},
	"registry.url":               {"CM_REGISTRY_URL"},
	"registry.api_key":           {"CM_REGISTRY_API_KEY"},
	"registry.file_path":         {"CM_REGISTRY_FILE_PATH"},
	"log_level":                  {"CM_LOG_LEVEL"},
}

// bindEnvs binds the environment variable mappings to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
