package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendRequest struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FromID    string    `gorm:"type:uuid;not null;index" json:"from_id"`
	ToID      string    `gorm:"type:uuid;not null;index" json:"to_id"`
	Status    string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"` // pending, accepted, rejected
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	From User `gorm:"foreignKey:FromID;references:ID" json:"from,omitempty"`
	To   User `gorm:"foreignKey:ToID;references:ID" json:"to,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friend request status constants
const (
	FriendRequestStatusPending  = "pending"
	FriendRequestStatusAccepted = "accepted"
	FriendRequestStatusRejected = "rejected"
)

// PendingPairIndexDDL creates a partial unique index so at most one pending
// request can exist per ordered (from, to) pair. Rejected rows stay behind for
// history and do not block a new request. AutoMigrate cannot express partial
// indexes, so the router runs this after migration.
const PendingPairIndexDDL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending_pair
ON friend_requests (from_id, to_id)
WHERE status = 'pending'`
