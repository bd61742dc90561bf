package models

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWadScanAndValue(t *testing.T) {
	var w Wad
	require.NoError(t, w.Scan("123456789012345678901234567890"))
	v, err := w.Value()
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", v)

	require.NoError(t, w.Scan(nil))
	assert.Equal(t, 0, w.Sign())

	require.NoError(t, w.Scan(int64(42)))
	assert.Equal(t, "42", w.String())

	assert.Error(t, w.Scan("not-a-number"))
	assert.Error(t, w.Scan(3.14))
}

func TestWadJSONQuotesLargeValues(t *testing.T) {
	big256 := new(big.Int).Lsh(big.NewInt(1), 200)
	w := WadFrom(big256)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Equal(t, `"`+big256.String()+`"`, string(data))

	var back Wad
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, back.Big().Cmp(big256))
}

func TestWadFromCopies(t *testing.T) {
	src := big.NewInt(7)
	w := WadFrom(src)
	src.SetInt64(99)
	assert.Equal(t, "7", w.String())

	// Big returns a mutable copy, never the backing value.
	b := w.Big()
	b.SetInt64(99)
	assert.Equal(t, "7", w.String())
}

func TestShareIDPacksMarketAndSide(t *testing.T) {
	yes := ShareID(7, SideYes)
	no := ShareID(7, SideNo)
	assert.NotEqual(t, yes, no)
	assert.Equal(t, yes>>1, no>>1)
	assert.NotEqual(t, ShareID(8, SideYes)>>1, yes>>1)
}

func TestOutcomeClassification(t *testing.T) {
	assert.True(t, OutcomeYes.Terminal())
	assert.True(t, OutcomeNo.Terminal())
	assert.True(t, OutcomeInvalid.Terminal())
	assert.False(t, OutcomeUndecided.Terminal())
	assert.False(t, Outcome("MAYBE").Terminal())

	assert.True(t, SideYes.Valid())
	assert.True(t, SideNo.Valid())
	assert.False(t, Side("BOTH").Valid())
}
