// Package network loads the description of the networks the ledger can be
// deployed to along with the mock and reporting settings.
package network

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"slices"

	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevelopmentChains are the networks that get mocks deployed.
var DevelopmentChains = []string{"hardhat", "localhost"}

// Network describes a single network.
type Network struct {
	ChainID         uint64 `yaml:"chain_id"`
	RPCURL          string `yaml:"rpc_url"`
	EthUSDPriceFeed string `yaml:"eth_usd_price_feed"`
	BlockConfirms   uint64 `yaml:"block_confirmations"`
}

// Mocks holds the values used to deploy the mock price feed.
type Mocks struct {
	Decimals      uint8  `yaml:"decimals"`
	InitialAnswer string `yaml:"initial_answer"`
}

// Answer returns the initial answer as an integer.
func (m Mocks) Answer() (*big.Int, error) {
	answer, ok := new(big.Int).SetString(m.InitialAnswer, 10)
	if !ok {
		return nil, fmt.Errorf("invalid mock initial answer %q", m.InitialAnswer)
	}
	return answer, nil
}

// Config is the root of the networks file.
type Config struct {
	Networks      map[string]Network `yaml:"networks"`
	Mocks         Mocks              `yaml:"mocks"`
	MinimumUSD    int64              `yaml:"minimum_usd"`
	NamedAccounts map[string]string  `yaml:"named_accounts"`
	GasReporter   gasreport.Config   `yaml:"gas_reporter"`
}

// LoadEnv applies the variables in each env file to the environment
// without overriding variables already set. Files are read one at a time so
// a missing file does not stop the ones after it.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}

	return nil
}

// Load reads the networks file. Environment variables referenced as
// ${VAR} are expanded, see LoadEnv for applying .env files first.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading networks file: %w", err)
	}

	return Parse(data)
}

// Parse decodes the networks document, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse networks yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Lookup returns the named network.
func (c Config) Lookup(name string) (Network, error) {
	n, exists := c.Networks[name]
	if !exists {
		return Network{}, fmt.Errorf("unknown network %q", name)
	}
	return n, nil
}

// IsDevelopment reports whether mocks should be deployed to the network.
func IsDevelopment(name string) bool {
	return slices.Contains(DevelopmentChains, name)
}

// =============================================================================

func (c *Config) applyDefaults() {
	if c.Networks == nil {
		c.Networks = make(map[string]Network)
	}

	if _, exists := c.Networks["hardhat"]; !exists {
		c.Networks["hardhat"] = Network{ChainID: 31337}
	}

	if c.Mocks.Decimals == 0 {
		c.Mocks.Decimals = 8
	}

	if c.Mocks.InitialAnswer == "" {
		c.Mocks.InitialAnswer = "200000000000"
	}

	if c.MinimumUSD == 0 {
		c.MinimumUSD = 50
	}

	if c.NamedAccounts == nil {
		c.NamedAccounts = map[string]string{"deployer": "deployer", "user": "user"}
	}

	if c.GasReporter.Currency == "" {
		c.GasReporter.Currency = "USD"
	}

	if c.GasReporter.Token == "" {
		c.GasReporter.Token = "ETH"
	}
}

func (c Config) validate() error {
	var errs []error

	if _, err := c.Mocks.Answer(); err != nil {
		errs = append(errs, err)
	}

	if c.MinimumUSD < 0 {
		errs = append(errs, fmt.Errorf("minimum_usd must not be negative: %d", c.MinimumUSD))
	}

	for name, n := range c.Networks {
		if n.ChainID == 0 {
			errs = append(errs, fmt.Errorf("network %s: chain_id is required", name))
		}

		if !IsDevelopment(name) && n.EthUSDPriceFeed == "" {
			errs = append(errs, fmt.Errorf("network %s: eth_usd_price_feed is required", name))
		}
	}

	return errors.Join(errs...)
}
