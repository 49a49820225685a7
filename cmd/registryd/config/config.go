package config

import (
	"errors"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// adminTokenEnv overrides the admin token from the environment so the
// secret can stay out of the config file.
const adminTokenEnv = "REGISTRY_ADMIN_TOKEN"

type RegistryConfig struct {
	ChainID    int64  `yaml:"chain_id"`
	RPCURL     string `yaml:"rpc_url"`
	ListenAddr string `yaml:"listen_addr"`
	Version    string `yaml:"version"`

	// Owner is the registry owner address; admin API mutations execute as
	// this caller.
	Owner string `yaml:"owner"`

	AdminToken string `yaml:"admin_token"`

	// OwnerKey is the owner account's hex private key. Optional; without
	// it the daemon runs read-only and relay transactions are disabled.
	OwnerKey string `yaml:"owner_key"`

	MaxBaseTokensPerSuggestion int `yaml:"max_base_tokens_per_suggestion"`
	MaxAssociatedTokens        int `yaml:"max_associated_tokens"`

	EventBufferSize uint `yaml:"event_buffer_size"`
}

// LoadConfig reads a configuration file from the given path and unmarshals
// it into a RegistryConfig struct. A .env file alongside the process, if
// present, is loaded first; REGISTRY_ADMIN_TOKEN overrides admin_token.
func LoadConfig(path string) (*RegistryConfig, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RegistryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if token := os.Getenv(adminTokenEnv); token != "" {
		cfg.AdminToken = token
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks if the configuration is valid.
func (c *RegistryConfig) validate() error {
	if c.ChainID <= 0 {
		return errors.New("config: chain_id is required")
	}
	if c.RPCURL == "" {
		return errors.New("config: rpc_url is required")
	}
	if c.ListenAddr == "" {
		return errors.New("config: listen_addr is required")
	}
	if c.Version == "" {
		return errors.New("config: version is required")
	}
	if !common.IsHexAddress(c.Owner) {
		return errors.New("config: owner must be a hex address")
	}
	return nil
}

// OwnerAddress returns the parsed owner address. Valid after LoadConfig.
func (c *RegistryConfig) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// ChainIDBig returns the chain ID in the form transaction signers expect.
func (c *RegistryConfig) ChainIDBig() *big.Int {
	return big.NewInt(c.ChainID)
}
