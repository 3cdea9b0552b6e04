package model

import "time"

// Friendship is one undirected edge in the social graph, stored as a single
// row with the endpoints in canonical order (UserLowID < UserHighID). One row
// per pair makes an asymmetric edge structurally impossible: there is no
// second direction to forget to write.
type Friendship struct {
	UserLowID  string    `gorm:"type:uuid;primaryKey" json:"user_low_id"`
	UserHighID string    `gorm:"type:uuid;primaryKey" json:"user_high_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	UserLow  User `gorm:"foreignKey:UserLowID;references:ID" json:"-"`
	UserHigh User `gorm:"foreignKey:UserHighID;references:ID" json:"-"`
}

// TableName specifies the table name
func (Friendship) TableName() string {
	return "friendships"
}

// NewFriendship builds the canonical edge for a pair of users. The argument
// order does not matter.
func NewFriendship(userA, userB string) Friendship {
	low, high := CanonicalPair(userA, userB)
	return Friendship{UserLowID: low, UserHighID: high}
}

// CanonicalPair orders two identities so (A,B) and (B,A) address the same row.
func CanonicalPair(userA, userB string) (low, high string) {
	if userA < userB {
		return userA, userB
	}
	return userB, userA
}

// OtherUser returns the endpoint of the edge that is not the given user.
func (f Friendship) OtherUser(userID string) string {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}
