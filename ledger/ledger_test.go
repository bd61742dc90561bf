package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predex/models"
	"predex/models/modelstesting"
	"predex/wadmath"
)

func testParams() CreateParams {
	return CreateParams{
		Question:           "Will it rain tomorrow?",
		B:                  models.WadFrom(wadmath.FromInt(100)),
		CollateralToken:    "usdw",
		CollateralDecimals: 18,
		Oracle:             "oracle-1",
		CloseTime:          time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAssignsIDAndZeroInventory(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	l := New(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := l.Create(db, testParams(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 0, first.QYes.Sign())
	assert.Equal(t, 0, first.QNo.Sign())
	assert.Equal(t, models.OutcomeUndecided, first.Outcome)

	second, err := l.Create(db, testParams(), now)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestCreateValidation(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	l := New(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]func(*CreateParams){
		"zero liquidity":      func(p *CreateParams) { p.B = models.Wad{} },
		"missing token":       func(p *CreateParams) { p.CollateralToken = "" },
		"decimals too large":  func(p *CreateParams) { p.CollateralDecimals = 37 },
		"negative decimals":   func(p *CreateParams) { p.CollateralDecimals = -1 },
		"missing oracle":      func(p *CreateParams) { p.Oracle = "" },
		"close time in past":  func(p *CreateParams) { p.CloseTime = now.Add(-time.Hour) },
		"close time is now":   func(p *CreateParams) { p.CloseTime = now },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := testParams()
			mutate(&p)
			_, err := l.Create(db, p, now)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestGetUnknownMarket(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	l := New(db)
	_, err := l.Get(db, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequireOpenGuards(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	l := New(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := l.Create(db, testParams(), now)
	require.NoError(t, err)
	assert.NoError(t, l.RequireOpen(m, now))

	// At or past the close time trading stops, strictly.
	assert.ErrorIs(t, l.RequireOpen(m, m.CloseTime), ErrMarketClosed)
	assert.ErrorIs(t, l.RequireOpen(m, m.CloseTime.Add(time.Second)), ErrMarketClosed)

	m.Outcome = models.OutcomeYes
	assert.ErrorIs(t, l.RequireOpen(m, now), ErrMarketClosed)
}

func TestRequireResolved(t *testing.T) {
	db := modelstesting.NewFakeDB(t)
	l := New(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := l.Create(db, testParams(), now)
	require.NoError(t, err)
	assert.ErrorIs(t, l.RequireResolved(m), ErrNotResolved)

	m.Outcome = models.OutcomeInvalid
	assert.NoError(t, l.RequireResolved(m))
}

func TestPauseFlag(t *testing.T) {
	l := New(modelstesting.NewFakeDB(t))
	assert.False(t, l.Paused())
	l.Pause()
	assert.True(t, l.Paused())
	l.Resume()
	assert.False(t, l.Paused())
}

func TestLockSerializesPerMarket(t *testing.T) {
	l := New(modelstesting.NewFakeDB(t))
	unlock := l.Lock(1)
	// A different market's lock is independent.
	otherUnlock := l.Lock(2)
	otherUnlock()
	unlock()
	// Re-acquiring after unlock does not deadlock.
	again := l.Lock(1)
	again()
}
