// Package ledger owns per-market state: creation, lookup, the open/resolved
// guards every other component calls before touching time-sensitive state,
// and the one-exclusive-writer-per-market locking discipline.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"predex/models"
)

var (
	// ErrNotFound is returned for an unknown market id.
	ErrNotFound = errors.New("ledger: market not found")
	// ErrInvalidParameter is returned for malformed creation or trade
	// parameters: non-positive b, empty collateral or oracle reference,
	// close time not in the future, zero amounts.
	ErrInvalidParameter = errors.New("ledger: invalid parameter")
	// ErrMarketClosed is returned when trading is attempted past the close
	// time or after resolution.
	ErrMarketClosed = errors.New("ledger: market closed")
	// ErrNotResolved is returned when redemption is attempted on an
	// undecided market.
	ErrNotResolved = errors.New("ledger: market not resolved")
	// ErrAlreadyResolved is returned on a second resolution attempt.
	ErrAlreadyResolved = errors.New("ledger: market already resolved")
	// ErrInsufficientBalance is returned when a caller lacks the collateral
	// or shares an operation needs.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
)

// Ledger wraps the market table with lifecycle guards and per-market write
// locks. Mutating operations must hold the market's lock for their whole
// read-check-write span.
type Ledger struct {
	db     *gorm.DB
	mu     sync.Mutex
	locks  map[int64]*sync.Mutex
	paused atomic.Bool
}

// New builds a Ledger over db.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, locks: make(map[int64]*sync.Mutex)}
}

// DB exposes the underlying handle for transaction scoping.
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

// CreateParams carries the immutable fields of a new market.
type CreateParams struct {
	Question           string
	Description        string
	B                  Wad
	CollateralToken    string
	CollateralDecimals int
	Oracle             string
	CloseTime          time.Time
	MetadataRef        string
}

// Wad aliases the model amount type for creation parameters.
type Wad = models.Wad

// Create validates and persists a new market with zero inventory, returning
// its monotonically assigned id.
func (l *Ledger) Create(tx *gorm.DB, p CreateParams, now time.Time) (*models.Market, error) {
	if p.B.Sign() <= 0 {
		return nil, fmt.Errorf("%w: liquidity parameter must be positive", ErrInvalidParameter)
	}
	if p.CollateralToken == "" {
		return nil, fmt.Errorf("%w: collateral token is required", ErrInvalidParameter)
	}
	if p.CollateralDecimals < 0 || p.CollateralDecimals > 36 {
		return nil, fmt.Errorf("%w: collateral decimals out of range", ErrInvalidParameter)
	}
	if p.Oracle == "" {
		return nil, fmt.Errorf("%w: oracle is required", ErrInvalidParameter)
	}
	if !p.CloseTime.After(now) {
		return nil, fmt.Errorf("%w: close time must be in the future", ErrInvalidParameter)
	}

	market := models.Market{
		Question:           p.Question,
		Description:        p.Description,
		B:                  p.B,
		CollateralToken:    p.CollateralToken,
		CollateralDecimals: p.CollateralDecimals,
		Oracle:             p.Oracle,
		CloseTime:          p.CloseTime,
		Outcome:            models.OutcomeUndecided,
		MetadataRef:        p.MetadataRef,
	}
	if result := tx.Create(&market); result.Error != nil {
		return nil, result.Error
	}
	return &market, nil
}

// Get loads a market by id.
func (l *Ledger) Get(tx *gorm.DB, id int64) (*models.Market, error) {
	var market models.Market
	if result := tx.First(&market, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, result.Error
	}
	return &market, nil
}

// RequireOpen fails unless the market is undecided and strictly before its
// close time.
func (l *Ledger) RequireOpen(m *models.Market, now time.Time) error {
	if m.Outcome != models.OutcomeUndecided {
		return fmt.Errorf("%w: market %d is resolved", ErrMarketClosed, m.ID)
	}
	if !now.Before(m.CloseTime) {
		return fmt.Errorf("%w: market %d is past close time", ErrMarketClosed, m.ID)
	}
	return nil
}

// RequireResolved fails while the market is still undecided.
func (l *Ledger) RequireResolved(m *models.Market) error {
	if m.Outcome == models.OutcomeUndecided {
		return fmt.Errorf("%w: market %d", ErrNotResolved, m.ID)
	}
	return nil
}

// Lock acquires the market's exclusive writer lock and returns the unlock.
// Mutations never call back into user code while holding it, so the
// serialized-execution model of the core holds.
func (l *Ledger) Lock(id int64) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// Pause blocks all execute paths; quotes keep working. The signal comes from
// an external collaborator (the admin surface), not from the core itself.
func (l *Ledger) Pause() { l.paused.Store(true) }

// Resume re-enables execute paths.
func (l *Ledger) Resume() { l.paused.Store(false) }

// Paused reports the pause flag.
func (l *Ledger) Paused() bool { return l.paused.Load() }
