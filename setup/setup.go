// Package setup loads the embedded economics configuration. Operators
// override the file at build time; code reads it through LoadConfig so the
// numbers live in exactly one place.
package setup

import (
	_ "embed"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed setup.yaml
var setupYaml []byte

// EconomicsConfig is the fee and liquidity policy of the exchange.
type EconomicsConfig struct {
	FeeBps           int64  `yaml:"fee_bps" validate:"min=0,max=10000"`
	FeeRecipient     string `yaml:"fee_recipient" validate:"required"`
	DefaultLiquidity string `yaml:"default_liquidity" validate:"required"`
}

// TokensConfig registers collateral token precisions.
type TokensConfig struct {
	Decimals map[string]int `yaml:"decimals"`
}

// Config is the root of setup.yaml.
type Config struct {
	Economics EconomicsConfig `yaml:"economics"`
	Tokens    TokensConfig    `yaml:"tokens"`
}

// LoadConfig parses and validates the embedded setup.yaml.
func LoadConfig() (*Config, error) {
	return loadConfig(setupYaml)
}

func loadConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse setup.yaml: %w", err)
	}
	if err := validator.New().Struct(cfg.Economics); err != nil {
		return nil, fmt.Errorf("validate setup.yaml: %w", err)
	}
	if _, err := cfg.Economics.DefaultLiquidityWad(); err != nil {
		return nil, err
	}
	for token, d := range cfg.Tokens.Decimals {
		if d < 0 || d > 36 {
			return nil, fmt.Errorf("setup.yaml: token %s decimals %d out of range", token, d)
		}
	}
	return &cfg, nil
}

// DefaultLiquidityWad parses the default liquidity parameter.
func (e EconomicsConfig) DefaultLiquidityWad() (*big.Int, error) {
	b, ok := new(big.Int).SetString(e.DefaultLiquidity, 10)
	if !ok || b.Sign() <= 0 {
		return nil, fmt.Errorf("setup.yaml: invalid default_liquidity %q", e.DefaultLiquidity)
	}
	return b, nil
}
