package model

import "time"

// OnlineWindow is the maximum heartbeat age for a user to count as online.
const OnlineWindow = 2 * time.Minute

// Presence stores the latest heartbeat per user. There is no persisted online
// flag; online-ness is derived from LastSeenAt at query time.
type Presence struct {
	UserID     string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	LastSeenAt time.Time `gorm:"not null" json:"last_seen_at"`
}

// TableName specifies the table name
func (Presence) TableName() string {
	return "presences"
}

// OnlineAt reports whether the heartbeat is fresh enough at the given instant.
func (p Presence) OnlineAt(now time.Time) bool {
	return now.Sub(p.LastSeenAt) <= OnlineWindow
}
