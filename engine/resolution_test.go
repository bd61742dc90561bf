package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predex/ledger"
	"predex/lmsr"
	"predex/models"
	"predex/wadmath"
)

func TestResolveLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	m := createTestMarket(t, e, 100)

	err := e.Resolve("oracle-1", m.ID, models.OutcomeUndecided)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)

	err = e.Resolve("impostor", m.ID, models.OutcomeYes)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeYes))
	status, err := e.Status(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeYes, status.Outcome)
	require.NotNil(t, status.ResolvedAt)
	assert.True(t, status.ResolvedAt.Equal(testNow))

	err = e.Resolve("oracle-1", m.ID, models.OutcomeNo)
	assert.ErrorIs(t, err, ledger.ErrAlreadyResolved)
}

func TestResolveClosesTrading(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "alice", 1000)

	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeNo))
	_, err := e.QuoteBuy(m.ID, models.SideYes, wadmath.FromInt(1))
	assert.ErrorIs(t, err, ledger.ErrMarketClosed)
	_, err = e.ExecuteBuy("alice", m.ID, models.SideYes, wadmath.FromInt(1), wadmath.FromInt(10))
	assert.ErrorIs(t, err, ledger.ErrMarketClosed)
}

func TestResolveWorksWhilePaused(t *testing.T) {
	e, _ := newTestEngine(t)
	m := createTestMarket(t, e, 100)

	e.Pause()
	assert.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeYes))
}

func TestRedeemRequiresResolution(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "alice", 1000)

	_, err := e.ExecuteBuy("alice", m.ID, models.SideYes, wadmath.FromInt(5), wadmath.FromInt(100))
	require.NoError(t, err)

	_, err = e.Redeem("alice", m.ID)
	assert.ErrorIs(t, err, ledger.ErrNotResolved)
}

func TestRedeemWinningPaysOnePerShare(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "alice", 1000)

	shares := wadmath.FromInt(10)
	_, err := e.ExecuteBuy("alice", m.ID, models.SideYes, shares, wadmath.FromInt(100))
	require.NoError(t, err)
	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeYes))

	before := balanceOf(t, db, "alice")
	receipt, err := e.Redeem("alice", m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Shares.Big().Cmp(shares))
	assert.Equal(t, 0, receipt.Total.Big().Cmp(shares))

	after := balanceOf(t, db, "alice")
	assert.Equal(t, 0, new(big.Int).Sub(after, before).Cmp(shares))

	// Shares are burned; a second redemption finds nothing.
	held, err := ledger.NewGormShares().BalanceOf(db, "alice", models.ShareID(m.ID, models.SideYes))
	require.NoError(t, err)
	assert.Equal(t, 0, held.Sign())
	_, err = e.Redeem("alice", m.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestRedeemLosingSidePaysNothing(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "bob", 1000)

	_, err := e.ExecuteBuy("bob", m.ID, models.SideNo, wadmath.FromInt(4), wadmath.FromInt(100))
	require.NoError(t, err)
	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeYes))

	_, err = e.Redeem("bob", m.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestRedeemInvalidRefundsProportionally(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "alice", 1000)
	fund(t, db, "bob", 1000)

	aliceShares := wadmath.FromInt(10)
	bobShares := wadmath.FromInt(4)
	_, err := e.ExecuteBuy("alice", m.ID, models.SideYes, aliceShares, wadmath.FromInt(100))
	require.NoError(t, err)
	_, err = e.ExecuteBuy("bob", m.ID, models.SideNo, bobShares, wadmath.FromInt(100))
	require.NoError(t, err)
	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeInvalid))

	status, err := e.Status(m.ID)
	require.NoError(t, err)
	maker, err := lmsr.New(status.B.Big())
	require.NoError(t, err)
	pool, err := maker.ResidualPool(status.QYes.Big(), status.QNo.Big())
	require.NoError(t, err)
	require.Equal(t, 1, pool.Sign())
	outstanding := new(big.Int).Add(status.QYes.Big(), status.QNo.Big())

	aliceReceipt, err := e.Redeem("alice", m.ID)
	require.NoError(t, err)
	bobReceipt, err := e.Redeem("bob", m.ID)
	require.NoError(t, err)

	// Each refund is held * pool / outstanding, truncating.
	wantAlice := new(big.Int).Mul(aliceShares, pool)
	wantAlice.Quo(wantAlice, outstanding)
	assert.Equal(t, 0, aliceReceipt.Total.Big().Cmp(wantAlice))

	wantBob := new(big.Int).Mul(bobShares, pool)
	wantBob.Quo(wantBob, outstanding)
	assert.Equal(t, 0, bobReceipt.Total.Big().Cmp(wantBob))

	// Truncation keeps the summed refunds within the pool, short at most a
	// wei per redeemer.
	sum := new(big.Int).Add(aliceReceipt.Total.Big(), bobReceipt.Total.Big())
	assert.True(t, sum.Cmp(pool) <= 0)
	dust := new(big.Int).Sub(pool, sum)
	assert.True(t, dust.Cmp(big.NewInt(2)) <= 0, "dust %s exceeds 2 wei", dust)

	// Inventory counters are untouched by redemption.
	status, err = e.Status(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.QYes.Big().Cmp(aliceShares))
	assert.Equal(t, 0, status.QNo.Big().Cmp(bobShares))
}

func TestRedeemInvalidCombinesBothSides(t *testing.T) {
	e, db := newTestEngine(t)
	m := createTestMarket(t, e, 100)
	fund(t, db, "alice", 1000)

	_, err := e.ExecuteBuy("alice", m.ID, models.SideYes, wadmath.FromInt(6), wadmath.FromInt(100))
	require.NoError(t, err)
	_, err = e.ExecuteBuy("alice", m.ID, models.SideNo, wadmath.FromInt(2), wadmath.FromInt(100))
	require.NoError(t, err)
	require.NoError(t, e.Resolve("oracle-1", m.ID, models.OutcomeInvalid))

	receipt, err := e.Redeem("alice", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "8000000000000000000", receipt.Shares.String())

	// Sole holder of all outstanding shares recovers the whole pool: with
	// held equal to outstanding the proportional division is exact.
	status, err := e.Status(m.ID)
	require.NoError(t, err)
	maker, err := lmsr.New(status.B.Big())
	require.NoError(t, err)
	pool, err := maker.ResidualPool(status.QYes.Big(), status.QNo.Big())
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Total.Big().Cmp(pool))
}

func TestRedeemUnknownMarket(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Redeem("alice", 404)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
