package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveFriendIsIdempotent(t *testing.T) {
	graph := newFakeFriendshipRepo()
	users := newFakeUserRepo("alice", "bob")
	presence := &presenceService{presenceRepo: newFakePresenceRepo(), now: time.Now}
	svc := NewFriendService(graph, users, presence, fakeNotificationService{})

	require.NoError(t, graph.AddEdge("alice", "bob"))

	require.NoError(t, svc.Remove("alice", "bob"))
	friends, err := graph.IsFriend("bob", "alice")
	require.NoError(t, err)
	assert.False(t, friends, "edge is gone in both directions")

	// Removing again, or removing a stranger, is not an error.
	assert.NoError(t, svc.Remove("alice", "bob"))
	assert.NoError(t, svc.Remove("alice", "ghost"))
}

func TestListOnlineFriendsCombinesGraphAndPresence(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	graph := newFakeFriendshipRepo()
	users := newFakeUserRepo("alice", "bob", "carol", "dave")
	presenceRepo := newFakePresenceRepo()
	now := base
	presence := &presenceService{presenceRepo: presenceRepo, now: func() time.Time { return now }}
	svc := NewFriendService(graph, users, presence, fakeNotificationService{})

	require.NoError(t, graph.AddEdge("alice", "bob"))
	require.NoError(t, graph.AddEdge("alice", "carol"))

	// bob heartbeats recently, carol long ago, dave is online but no friend.
	require.NoError(t, presenceRepo.Touch("bob", base.Add(-30*time.Second)))
	require.NoError(t, presenceRepo.Touch("carol", base.Add(-10*time.Minute)))
	require.NoError(t, presenceRepo.Touch("dave", base))

	online, err := svc.ListOnlineFriends("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, online, "online friends is a subset of friends")
}

func TestListFriendsUnknownIdentityIsEmpty(t *testing.T) {
	graph := newFakeFriendshipRepo()
	users := newFakeUserRepo()
	presence := &presenceService{presenceRepo: newFakePresenceRepo(), now: time.Now}
	svc := NewFriendService(graph, users, presence, fakeNotificationService{})

	friends, err := svc.ListFriends("ghost")
	require.NoError(t, err)
	assert.Empty(t, friends)
}
