package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedConfig(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(200), cfg.Economics.FeeBps)
	assert.Equal(t, "treasury", cfg.Economics.FeeRecipient)

	b, err := cfg.Economics.DefaultLiquidityWad()
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000", b.String())

	assert.Equal(t, 6, cfg.Tokens.Decimals["usdc"])
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	_, err := loadConfig([]byte("economics: {fee_bps: 20000, fee_recipient: t, default_liquidity: \"1\"}"))
	assert.Error(t, err)

	_, err = loadConfig([]byte("economics: {fee_bps: 100, fee_recipient: t, default_liquidity: \"zero\"}"))
	assert.Error(t, err)

	_, err = loadConfig([]byte("economics: {fee_bps: 100, fee_recipient: t, default_liquidity: \"1\"}\ntokens: {decimals: {bad: 99}}"))
	assert.Error(t, err)

	_, err = loadConfig([]byte(":::"))
	assert.Error(t, err)
}
