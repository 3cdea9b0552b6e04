package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresenceFixture(start time.Time) (*presenceService, *fakePresenceRepo, *time.Time) {
	repo := newFakePresenceRepo()
	now := start
	svc := &presenceService{
		presenceRepo: repo,
		now:          func() time.Time { return now },
	}
	return svc, repo, &now
}

func TestHeartbeatIsMonotonic(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, now := newPresenceFixture(base)

	// Heartbeat at t2, then a delayed heartbeat from t1 arrives out of order.
	*now = base.Add(10 * time.Second)
	require.NoError(t, svc.Heartbeat("alice"))

	*now = base
	require.NoError(t, svc.Heartbeat("alice"))

	lastSeen, found, err := repo.LastSeen("alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, base.Add(10*time.Second), lastSeen, "stale heartbeat must not regress last seen")
}

func TestStalenessBoundary(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, now := newPresenceFixture(base)

	require.NoError(t, svc.Heartbeat("alice"))

	*now = base.Add(119 * time.Second)
	online, err := svc.IsOnline("alice")
	require.NoError(t, err)
	assert.True(t, online)

	*now = base.Add(120 * time.Second)
	online, err = svc.IsOnline("alice")
	require.NoError(t, err)
	assert.True(t, online, "window is inclusive")

	*now = base.Add(121 * time.Second)
	online, err = svc.IsOnline("alice")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestUnknownUserIsOffline(t *testing.T) {
	svc, _, _ := newPresenceFixture(time.Now())

	online, err := svc.IsOnline("ghost")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestListOnlineReturnsSubset(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, now := newPresenceFixture(base)

	require.NoError(t, svc.Heartbeat("alice"))

	*now = base.Add(5 * time.Minute)
	require.NoError(t, svc.Heartbeat("bob"))

	*now = base.Add(6 * time.Minute)
	online, err := svc.ListOnline([]string{"alice", "bob", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, online)

	online, err = svc.ListOnline(nil)
	require.NoError(t, err)
	assert.Empty(t, online)
}
