package service

import (
	"testing"

	"studybuddy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestFixture(userIDs ...string) (FriendRequestService, *fakeFriendRequestRepo, *fakeFriendshipRepo) {
	graph := newFakeFriendshipRepo()
	requests := newFakeFriendRequestRepo(graph)
	users := newFakeUserRepo(userIDs...)
	svc := NewFriendRequestService(requests, graph, users, fakeNotificationService{})
	return svc, requests, graph
}

func TestSendSelfRequestFails(t *testing.T) {
	svc, requests, _ := newRequestFixture("alice")

	_, err := svc.Send("alice", "alice")
	assert.ErrorIs(t, err, ErrSelfRequest)
	assert.Empty(t, requests.requests, "no request row may be created")
}

func TestSendUnknownRecipientFails(t *testing.T) {
	svc, requests, _ := newRequestFixture("alice")

	_, err := svc.Send("alice", "ghost")
	assert.ErrorIs(t, err, ErrUnknownRecipient)
	assert.Empty(t, requests.requests)
}

func TestSendAlreadyFriendsFails(t *testing.T) {
	svc, _, graph := newRequestFixture("alice", "bob")
	require.NoError(t, graph.AddEdge("alice", "bob"))

	_, err := svc.Send("alice", "bob")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestSendDuplicatePendingFails(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	_, err := svc.Send("alice", "bob")
	require.NoError(t, err)

	_, err = svc.Send("alice", "bob")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

// A reverse-direction pending request does not block a new one: simultaneous
// mutual invitations are a legal state. This pins current behavior; changing
// it is a product decision.
func TestSendAllowsReversePending(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	_, err := svc.Send("alice", "bob")
	require.NoError(t, err)

	_, err = svc.Send("bob", "alice")
	assert.NoError(t, err)
}

func TestSendAllowedAfterRejection(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	first, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(first.ID))

	_, err = svc.Send("alice", "bob")
	assert.NoError(t, err, "rejected rows do not count toward duplicate suppression")
}

func TestAcceptEstablishesSymmetricFriendship(t *testing.T) {
	svc, _, graph := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.Accept(request.ID))

	ab, err := graph.IsFriend("alice", "bob")
	require.NoError(t, err)
	ba, err := graph.IsFriend("bob", "alice")
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)
}

func TestAcceptIsTerminal(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Accept(request.ID))

	// The record was consumed; a second accept must not be a hard failure
	// for callers who verify graph state, but it cannot succeed either.
	err = svc.Accept(request.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptUnknownRequest(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	err := svc.Accept("nope")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRejectLeavesGraphUntouched(t *testing.T) {
	svc, _, graph := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(request.ID))

	friends, err := graph.IsFriend("alice", "bob")
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestRejectRetainsRecord(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(request.ID))

	// Incoming lists carry no status filter, so the rejected row stays
	// visible to the recipient.
	incoming, err := svc.ListIncoming("bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, model.FriendRequestStatusRejected, incoming[0].Status)
}

func TestAcceptAfterRejectIsInvalidState(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(request.ID))

	err = svc.Accept(request.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = svc.Reject(request.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRemovesRequest(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(request.ID))

	outgoing, err := svc.ListOutgoing("alice")
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	assert.ErrorIs(t, svc.Cancel(request.ID), ErrRequestNotFound)
}

// Cancellation is unconditional and unauthenticated at the protocol layer:
// any caller who knows the id may delete, and non-pending rows go too.
// Pinned deliberately; see DESIGN.md.
func TestCancelIsUnconditional(t *testing.T) {
	svc, _, _ := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(request.ID))

	assert.NoError(t, svc.Cancel(request.ID), "rejected rows are still cancellable")
}

func TestInviteAcceptScenario(t *testing.T) {
	svc, _, graph := newRequestFixture("alice", "bob")

	request, err := svc.Send("alice", "bob")
	require.NoError(t, err)

	incoming, err := svc.ListIncoming("bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, request.ID, incoming[0].ID)
	assert.Equal(t, model.FriendRequestStatusPending, incoming[0].Status)

	require.NoError(t, svc.Accept(request.ID))

	aliceFriends, err := graph.ListFriends("alice")
	require.NoError(t, err)
	bobFriends, err := graph.ListFriends("bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, aliceFriends)
	assert.Equal(t, []string{"alice"}, bobFriends)

	incoming, err = svc.ListIncoming("bob")
	require.NoError(t, err)
	assert.Empty(t, incoming, "accepted request is consumed")
}
