package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPairOrdersArguments(t *testing.T) {
	low, high := CanonicalPair("bob", "alice")
	assert.Equal(t, "alice", low)
	assert.Equal(t, "bob", high)

	low2, high2 := CanonicalPair("alice", "bob")
	assert.Equal(t, low, low2)
	assert.Equal(t, high, high2)
}

func TestNewFriendshipIsSymmetric(t *testing.T) {
	ab := NewFriendship("alice", "bob")
	ba := NewFriendship("bob", "alice")
	assert.Equal(t, ab.UserLowID, ba.UserLowID)
	assert.Equal(t, ab.UserHighID, ba.UserHighID)
}

func TestOtherUser(t *testing.T) {
	edge := NewFriendship("alice", "bob")
	assert.Equal(t, "bob", edge.OtherUser("alice"))
	assert.Equal(t, "alice", edge.OtherUser("bob"))
}

func TestOnlineAt(t *testing.T) {
	seen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Presence{UserID: "alice", LastSeenAt: seen}

	assert.True(t, p.OnlineAt(seen.Add(119*time.Second)))
	assert.True(t, p.OnlineAt(seen.Add(OnlineWindow)))
	assert.False(t, p.OnlineAt(seen.Add(121*time.Second)))
}
