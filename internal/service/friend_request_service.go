package service

import (
	"errors"
	"fmt"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"

	"gorm.io/gorm"
)

// FriendRequestService is the request/accept/reject protocol. Every
// precondition is checked before any mutation, and every mutation is a single
// statement or transaction in the repository, so correctness does not depend
// on in-process locking.
//
// The protocol is deliberately permissive in two places: any caller who knows
// a request id may accept, reject or cancel it, and a reverse-direction
// pending request does not block a new one. Both behaviors are pinned by
// tests; tightening either is a product decision, not a bug fix.
type FriendRequestService interface {
	Send(fromID, toID string) (*model.FriendRequest, error)
	Accept(requestID string) error
	Reject(requestID string) error
	Cancel(requestID string) error
	ListIncoming(userID string) ([]*model.FriendRequest, error)
	ListOutgoing(userID string) ([]*model.FriendRequest, error)
}

type friendRequestService struct {
	requestRepo  repository.FriendRequestRepository
	friendRepo   repository.FriendshipRepository
	userRepo     repository.UserRepository
	notifService NotificationService
}

func NewFriendRequestService(
	requestRepo repository.FriendRequestRepository,
	friendRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notifService NotificationService,
) FriendRequestService {
	return &friendRequestService{
		requestRepo:  requestRepo,
		friendRepo:   friendRepo,
		userRepo:     userRepo,
		notifService: notifService,
	}
}

// Send creates a pending request from fromID to toID.
func (s *friendRequestService) Send(fromID, toID string) (*model.FriendRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}

	if _, err := s.userRepo.FindByID(toID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownRecipient
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	alreadyFriends, err := s.friendRepo.IsFriend(fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	if _, err := s.requestRepo.FindPendingByPair(fromID, toID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}

	request := &model.FriendRequest{
		FromID: fromID,
		ToID:   toID,
		Status: model.FriendRequestStatusPending,
	}

	if err := s.requestRepo.Create(request); err != nil {
		// Two concurrent sends for the same pair can both pass the check
		// above; the partial unique index decides the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	go s.notify(func(fromName string) error {
		return s.notifService.NotifyFriendRequest(toID, fromID, fromName, request.ID)
	}, fromID)

	return request, nil
}

// Accept consumes a pending request and establishes the friendship edge.
// A racing second accept observes ErrRequestNotFound; the edge insert is
// idempotent so no double write can occur either way.
func (s *friendRequestService) Accept(requestID string) error {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to load friend request: %w", err)
	}

	if request.Status != model.FriendRequestStatusPending {
		return ErrInvalidState
	}

	if err := s.requestRepo.Accept(request); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to accept friend request: %w", err)
	}

	go s.notify(func(toName string) error {
		return s.notifService.NotifyFriendAccepted(request.FromID, request.ToID, toName, request.ID)
	}, request.ToID)

	return nil
}

// Reject marks a pending request rejected. The row is kept so "asked and
// declined" stays distinguishable from "never asked".
func (s *friendRequestService) Reject(requestID string) error {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to load friend request: %w", err)
	}

	if request.Status != model.FriendRequestStatusPending {
		return ErrInvalidState
	}

	if err := s.requestRepo.UpdateStatus(request, model.FriendRequestStatusRejected); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race against another transition.
			return ErrInvalidState
		}
		return fmt.Errorf("failed to reject friend request: %w", err)
	}

	go s.notify(func(toName string) error {
		return s.notifService.NotifyFriendRejected(request.FromID, request.ToID, toName, request.ID)
	}, request.ToID)

	return nil
}

// Cancel removes a request outright regardless of status. Used by senders to
// withdraw an invitation.
func (s *friendRequestService) Cancel(requestID string) error {
	if err := s.requestRepo.Delete(requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to cancel friend request: %w", err)
	}
	return nil
}

// ListIncoming returns every request addressed to the user, newest first.
// No status filter is applied; the client filters.
func (s *friendRequestService) ListIncoming(userID string) ([]*model.FriendRequest, error) {
	return s.requestRepo.FindByToID(userID)
}

// ListOutgoing returns every request the user has sent, newest first.
func (s *friendRequestService) ListOutgoing(userID string) ([]*model.FriendRequest, error) {
	return s.requestRepo.FindByFromID(userID)
}

// notify resolves the acting user's display name and fires a notification.
// Failures are swallowed: the protocol makes no delivery guarantee.
func (s *friendRequestService) notify(send func(name string) error, actorID string) {
	name := ""
	if actor, err := s.userRepo.FindByID(actorID); err == nil {
		name = actor.FullName
		if name == "" {
			name = actor.Username
		}
	}
	_ = send(name)
}
