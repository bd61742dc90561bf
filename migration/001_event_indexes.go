package migration

import "gorm.io/gorm"

func init() {
	Register("001_event_indexes", migrate001)
}

// Composite index for the event-log listing query (market id, newest first).
func migrate001(db *gorm.DB) error {
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_events_market_created ON events (market_id, created_at DESC)",
	).Error
}
