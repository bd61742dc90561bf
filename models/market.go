package models

import (
	"time"

	"gorm.io/gorm"
)

// Outcome is the terminal state of a binary market. It starts Undecided and
// transitions exactly once to Yes, No or Invalid.
type Outcome string

const (
	OutcomeUndecided Outcome = "UNDECIDED"
	OutcomeYes       Outcome = "YES"
	OutcomeNo        Outcome = "NO"
	OutcomeInvalid   Outcome = "INVALID"
)

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeUndecided, OutcomeYes, OutcomeNo, OutcomeInvalid:
		return true
	}
	return false
}

// Terminal reports whether o ends a market's trading life.
func (o Outcome) Terminal() bool {
	return o.Valid() && o != OutcomeUndecided
}

// Side identifies which outcome share a trade touches.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Valid reports whether s is YES or NO.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Market is one binary question priced by the LMSR maker. QYes and QNo are
// the maker's cumulative share inventories in wad; they move only through
// trade execution. B, the collateral reference, the oracle and the close time
// are immutable after creation. The record is never deleted: it stays
// queryable as a historical record after redemption drains all balances.
type Market struct {
	gorm.Model
	ID                 int64      `json:"id" gorm:"primary_key"`
	Question           string     `json:"question" gorm:"not null"`
	Description        string     `json:"description"`
	B                  Wad        `json:"b" gorm:"not null"`
	QYes               Wad        `json:"qYes"`
	QNo                Wad        `json:"qNo"`
	CollateralToken    string     `json:"collateralToken" gorm:"not null"`
	CollateralDecimals int        `json:"collateralDecimals" gorm:"not null;default:18"`
	Oracle             string     `json:"oracle" gorm:"not null"`
	CloseTime          time.Time  `json:"closeTime" gorm:"not null"`
	Outcome            Outcome    `json:"outcome" gorm:"size:10;default:UNDECIDED"`
	ResolvedAt         *time.Time `json:"resolvedAt,omitempty"`
	MetadataRef        string     `json:"metadataRef,omitempty"`
}

// OpenForTrading reports whether trades are still accepted: undecided and
// strictly before the close time.
func (m *Market) OpenForTrading(now time.Time) bool {
	return m.Outcome == OutcomeUndecided && now.Before(m.CloseTime)
}

// ShareID derives the fungible share identifier for one side of a market:
// the market id shifted left with a one-bit YES/NO discriminator.
func ShareID(marketID int64, side Side) uint64 {
	id := uint64(marketID) << 1
	if side == SideYes {
		id |= 1
	}
	return id
}
