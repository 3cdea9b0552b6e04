package service

import (
	"fmt"
	"time"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
)

// PresenceService answers liveness questions from stored heartbeats. There is
// no "went offline" event anywhere: a user is online exactly while their last
// heartbeat is at most model.OnlineWindow old, discovered lazily by whoever
// asks.
type PresenceService interface {
	Heartbeat(userID string) error
	IsOnline(userID string) (bool, error)
	ListOnline(userIDs []string) ([]string, error)
}

type presenceService struct {
	presenceRepo repository.PresenceRepository
	now          func() time.Time
}

func NewPresenceService(presenceRepo repository.PresenceRepository) PresenceService {
	return &presenceService{
		presenceRepo: presenceRepo,
		now:          time.Now,
	}
}

// Heartbeat records liveness for the caller. Unknown identities are upserted;
// a heartbeat never fails its sender over bookkeeping.
func (s *presenceService) Heartbeat(userID string) error {
	if err := s.presenceRepo.Touch(userID, s.now()); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return nil
}

// IsOnline reports whether the user's last heartbeat is within the window.
// Users with no recorded heartbeat are offline.
func (s *presenceService) IsOnline(userID string) (bool, error) {
	lastSeen, found, err := s.presenceRepo.LastSeen(userID)
	if err != nil {
		return false, fmt.Errorf("failed to load presence: %w", err)
	}
	if !found {
		return false, nil
	}
	return s.now().Sub(lastSeen) <= model.OnlineWindow, nil
}

// ListOnline returns the subset of userIDs currently online. Order is not
// specified.
func (s *presenceService) ListOnline(userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return []string{}, nil
	}

	cutoff := s.now().Add(-model.OnlineWindow)
	online, err := s.presenceRepo.SeenSince(userIDs, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query presence: %w", err)
	}
	return online, nil
}
