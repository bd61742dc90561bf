package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predex/models"
	"predex/models/modelstesting"
	"predex/wadmath"
)

func TestToTokenNarrowsWithTruncation(t *testing.T) {
	// 1.2345678 wad to a 6-decimal token keeps 1.234567 and drops the dust.
	wad, _ := new(big.Int).SetString("1234567800000000000", 10)
	assert.Equal(t, "1234567", ToToken(wad, 6).String())

	// 18 decimals is the identity.
	assert.Equal(t, 0, ToToken(wadmath.WAD, 18).Cmp(wadmath.WAD))

	// Widening to more decimals is exact.
	assert.Equal(t, "1000000000000000000000000", ToToken(wadmath.WAD, 24).String())
}

func TestFromTokenWidensExactly(t *testing.T) {
	assert.Equal(t, "1234567000000000000", FromToken(big.NewInt(1_234_567), 6).String())
	assert.Equal(t, 0, FromToken(wadmath.WAD, 18).Cmp(wadmath.WAD))
}

func TestTokenRoundTripAtNativePrecision(t *testing.T) {
	native := big.NewInt(987_654)
	back := ToToken(FromToken(native, 6), 6)
	assert.Equal(t, 0, native.Cmp(back))
}

func TestGormCollateralDecimals(t *testing.T) {
	c := NewGormCollateral(map[string]int{"usdc": 6})
	d, err := c.Decimals("usdc")
	require.NoError(t, err)
	assert.Equal(t, 6, d)

	// Unregistered tokens default to wad precision.
	d, err = c.Decimals("usdw")
	require.NoError(t, err)
	assert.Equal(t, 18, d)
}

func TestGormCollateralTransfers(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	c := NewGormCollateral(nil)

	require.NoError(t, db.Create(&models.CollateralAccount{
		Address: "alice",
		Token:   "usdw",
		Balance: models.WadFrom(wadmath.FromInt(10)),
	}).Error)

	require.NoError(t, c.TransferIn(db, "alice", "usdw", wadmath.FromInt(4)))
	require.NoError(t, c.TransferOut(db, "bob", "usdw", wadmath.FromInt(4)))

	var alice models.CollateralAccount
	require.NoError(t, db.Where("address = ? AND token = ?", "alice", "usdw").First(&alice).Error)
	assert.Equal(t, "6000000000000000000", alice.Balance.String())

	var bob models.CollateralAccount
	require.NoError(t, db.Where("address = ? AND token = ?", "bob", "usdw").First(&bob).Error)
	assert.Equal(t, "4000000000000000000", bob.Balance.String())
}

func TestGormCollateralInsufficientFunds(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	c := NewGormCollateral(nil)

	err := c.TransferIn(db, "nobody", "usdw", wadmath.FromInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, db.Create(&models.CollateralAccount{
		Address: "carol",
		Token:   "usdw",
		Balance: models.WadFrom(wadmath.FromInt(1)),
	}).Error)
	err = c.TransferIn(db, "carol", "usdw", wadmath.FromInt(2))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestGormSharesMintBurnBalance(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	s := NewGormShares()
	shareID := models.ShareID(7, models.SideYes)

	balance, err := s.BalanceOf(db, "alice", shareID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())

	require.NoError(t, s.Mint(db, "alice", shareID, wadmath.FromInt(5)))
	require.NoError(t, s.Burn(db, "alice", shareID, wadmath.FromInt(2)))

	balance, err = s.BalanceOf(db, "alice", shareID)
	require.NoError(t, err)
	assert.Equal(t, "3000000000000000000", balance.String())

	err = s.Burn(db, "alice", shareID, wadmath.FromInt(4))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	err = s.Burn(db, "bob", shareID, wadmath.FromInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
