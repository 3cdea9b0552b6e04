package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"studybuddy/internal/model"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They reproduce the storage
// contracts the services rely on: the pending-pair uniqueness of the partial
// index, the canonical-row graph, and the monotonic presence write.

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, id := range ids {
		repo.users[id] = &model.User{ID: id, Username: "user-" + id}
	}
	return repo
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeFriendshipRepo struct {
	mu    sync.Mutex
	edges map[string]bool
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{edges: make(map[string]bool)}
}

func edgeKey(userA, userB string) string {
	low, high := model.CanonicalPair(userA, userB)
	return low + "|" + high
}

func (r *fakeFriendshipRepo) AddEdge(userA, userB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[edgeKey(userA, userB)] = true
	return nil
}

func (r *fakeFriendshipRepo) RemoveEdge(userA, userB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, edgeKey(userA, userB))
	return nil
}

func (r *fakeFriendshipRepo) ListFriends(userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	friends := []string{}
	for key := range r.edges {
		low, high, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		if low == userID {
			friends = append(friends, high)
		} else if high == userID {
			friends = append(friends, low)
		}
	}
	return friends, nil
}

func (r *fakeFriendshipRepo) IsFriend(userA, userB string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edges[edgeKey(userA, userB)], nil
}

type fakeFriendRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.FriendRequest
	graph    *fakeFriendshipRepo
	seq      int
}

func newFakeFriendRequestRepo(graph *fakeFriendshipRepo) *fakeFriendRequestRepo {
	return &fakeFriendRequestRepo{
		requests: make(map[string]*model.FriendRequest),
		graph:    graph,
	}
}

func (r *fakeFriendRequestRepo) Create(request *model.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.FromID == request.FromID && existing.ToID == request.ToID &&
			existing.Status == model.FriendRequestStatusPending {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	request.ID = fmt.Sprintf("req-%d", r.seq)
	request.CreatedAt = time.Now()
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *fakeFriendRequestRepo) FindByID(id string) (*model.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeFriendRequestRepo) FindPendingByPair(fromID, toID string) (*model.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.FromID == fromID && request.ToID == toID &&
			request.Status == model.FriendRequestStatusPending {
			copied := *request
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendRequestRepo) FindByToID(toID string) ([]*model.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var requests []*model.FriendRequest
	for _, request := range r.requests {
		if request.ToID == toID {
			copied := *request
			requests = append(requests, &copied)
		}
	}
	return requests, nil
}

func (r *fakeFriendRequestRepo) FindByFromID(fromID string) ([]*model.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var requests []*model.FriendRequest
	for _, request := range r.requests {
		if request.FromID == fromID {
			copied := *request
			requests = append(requests, &copied)
		}
	}
	return requests, nil
}

func (r *fakeFriendRequestRepo) UpdateStatus(request *model.FriendRequest, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[request.ID]
	if !ok || stored.Status != model.FriendRequestStatusPending {
		return gorm.ErrRecordNotFound
	}
	stored.Status = status
	request.Status = status
	return nil
}

func (r *fakeFriendRequestRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeFriendRequestRepo) Accept(request *model.FriendRequest) error {
	r.mu.Lock()
	stored, ok := r.requests[request.ID]
	if !ok || stored.Status != model.FriendRequestStatusPending {
		r.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	delete(r.requests, request.ID)
	r.mu.Unlock()

	return r.graph.AddEdge(request.FromID, request.ToID)
}

type fakePresenceRepo struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{lastSeen: make(map[string]time.Time)}
}

// Touch keeps the later timestamp, matching the GREATEST upsert.
func (r *fakePresenceRepo) Touch(userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.lastSeen[userID]; ok && existing.After(at) {
		return nil
	}
	r.lastSeen[userID] = at
	return nil
}

func (r *fakePresenceRepo) LastSeen(userID string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.lastSeen[userID]
	return at, ok, nil
}

func (r *fakePresenceRepo) SeenSince(userIDs []string, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	online := []string{}
	for _, id := range userIDs {
		if at, ok := r.lastSeen[id]; ok && !at.Before(cutoff) {
			online = append(online, id)
		}
	}
	return online, nil
}

// fakeNotificationService swallows events; the protocol makes no delivery
// guarantee, so tests never assert on notifications.
type fakeNotificationService struct{}

func (fakeNotificationService) NotifyFriendRequest(userID, senderID, senderName, requestID string) error {
	return nil
}
func (fakeNotificationService) NotifyFriendAccepted(userID, senderID, senderName, requestID string) error {
	return nil
}
func (fakeNotificationService) NotifyFriendRejected(userID, senderID, senderName, requestID string) error {
	return nil
}
func (fakeNotificationService) NotifyFriendRemoved(userID, senderID, senderName string) error {
	return nil
}
func (fakeNotificationService) List(userID string, limit, offset int) ([]*model.Notification, error) {
	return nil, nil
}
func (fakeNotificationService) ListUnread(userID string) ([]*model.Notification, error) {
	return nil, nil
}
func (fakeNotificationService) UnreadCount(userID string) (int64, error) { return 0, nil }
func (fakeNotificationService) MarkAsRead(notificationID, userID string) error {
	return nil
}
func (fakeNotificationService) MarkAllAsRead(userID string) error { return nil }
