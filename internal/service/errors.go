package service

import "errors"

// Domain errors returned by the friend services. All of them are
// client-correctable; handlers map them to 4xx. Storage faults are wrapped
// with %w and surface as 500s.
var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrUnknownRecipient = errors.New("recipient not found")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrInvalidState     = errors.New("friend request is not pending")
)
