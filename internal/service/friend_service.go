package service

import (
	"fmt"

	"studybuddy/internal/repository"
)

// FriendService reads the social graph and combines it with presence. List
// queries never fail for unknown identities; they return empty lists.
type FriendService interface {
	ListFriends(userID string) ([]string, error)
	ListOnlineFriends(userID string) ([]string, error)
	Remove(userID, friendID string) error
	IsFriend(userA, userB string) (bool, error)
}

type friendService struct {
	friendRepo      repository.FriendshipRepository
	userRepo        repository.UserRepository
	presenceService PresenceService
	notifService    NotificationService
}

func NewFriendService(
	friendRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	presenceService PresenceService,
	notifService NotificationService,
) FriendService {
	return &friendService{
		friendRepo:      friendRepo,
		userRepo:        userRepo,
		presenceService: presenceService,
		notifService:    notifService,
	}
}

func (s *friendService) ListFriends(userID string) ([]string, error) {
	return s.friendRepo.ListFriends(userID)
}

// ListOnlineFriends returns the subset of the user's friends whose last
// heartbeat is within the online window.
func (s *friendService) ListOnlineFriends(userID string) ([]string, error) {
	friends, err := s.friendRepo.ListFriends(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return s.presenceService.ListOnline(friends)
}

// Remove deletes the friendship edge in both logical directions (one canonical
// row). Removing a non-existent friendship is not an error.
func (s *friendService) Remove(userID, friendID string) error {
	if err := s.friendRepo.RemoveEdge(userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}

	go func() {
		name := ""
		if user, err := s.userRepo.FindByID(userID); err == nil {
			name = user.FullName
			if name == "" {
				name = user.Username
			}
		}
		_ = s.notifService.NotifyFriendRemoved(friendID, userID, name)
	}()

	return nil
}

func (s *friendService) IsFriend(userA, userB string) (bool, error) {
	return s.friendRepo.IsFriend(userA, userB)
}
