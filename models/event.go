package models

import "time"

// EventType tags entries of the append-only market event log.
type EventType string

const (
	EventMarketCreated EventType = "MARKET_CREATED"
	EventBought        EventType = "BOUGHT"
	EventSold          EventType = "SOLD"
	EventResolved      EventType = "RESOLVED"
	EventRedeemed      EventType = "REDEEMED"
	EventFeeCollected  EventType = "FEE_COLLECTED"
)

// Event records one state transition with enough fields to replay it
// off-process. Events are append-only; nothing updates or deletes them.
type Event struct {
	ID        string    `json:"id" gorm:"primary_key;size:36"`
	MarketID  int64     `json:"marketId" gorm:"not null;index"`
	Type      EventType `json:"type" gorm:"not null;size:20;index"`
	Actor     string    `json:"actor"`
	Side      string    `json:"side,omitempty" gorm:"size:10"`
	Outcome   string    `json:"outcome,omitempty" gorm:"size:10"`
	Shares    Wad       `json:"shares"`
	Amount    Wad       `json:"amount"`
	Fee       Wad       `json:"fee"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
}
