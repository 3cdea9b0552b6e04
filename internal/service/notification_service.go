package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
	"studybuddy/internal/util"
)

// NotificationService records friend protocol events as a polling-consumed
// feed. Events go through RabbitMQ when it is up (the worker persists them);
// otherwise they are written straight to the table. Either way delivery is
// best-effort: the protocol itself makes no notification guarantee.
type NotificationService interface {
	NotifyFriendRequest(userID, senderID, senderName, requestID string) error
	NotifyFriendAccepted(userID, senderID, senderName, requestID string) error
	NotifyFriendRejected(userID, senderID, senderName, requestID string) error
	NotifyFriendRemoved(userID, senderID, senderName string) error
	List(userID string, limit, offset int) ([]*model.Notification, error)
	ListUnread(userID string) ([]*model.Notification, error)
	UnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
}

// FriendEventMessage is the wire format published to RabbitMQ.
type FriendEventMessage struct {
	UserID    string    `json:"user_id"`
	SenderID  string    `json:"sender_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TargetID  string    `json:"target_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	FriendEventQueueName = "friend_events_queue"
	FriendEventExchange  = "friend_events"
)

type notificationService struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
}

func NewNotificationService(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) NotificationService {
	if rabbitMQ != nil {
		if err := rabbitMQ.DeclareQueue(FriendEventExchange, FriendEventQueueName); err != nil {
			log.Printf("Failed to declare friend event queue: %v", err)
		}
	}

	return &notificationService{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
	}
}

func (s *notificationService) NotifyFriendRequest(userID, senderID, senderName, requestID string) error {
	return s.publish(FriendEventMessage{
		UserID:    userID,
		SenderID:  senderID,
		Type:      model.NotificationTypeFriendRequest,
		Message:   fmt.Sprintf("%s sent you a friend request", displayName(senderName)),
		TargetID:  requestID,
		Timestamp: time.Now(),
	})
}

func (s *notificationService) NotifyFriendAccepted(userID, senderID, senderName, requestID string) error {
	return s.publish(FriendEventMessage{
		UserID:    userID,
		SenderID:  senderID,
		Type:      model.NotificationTypeFriendAccepted,
		Message:   fmt.Sprintf("%s accepted your friend request", displayName(senderName)),
		TargetID:  requestID,
		Timestamp: time.Now(),
	})
}

func (s *notificationService) NotifyFriendRejected(userID, senderID, senderName, requestID string) error {
	return s.publish(FriendEventMessage{
		UserID:    userID,
		SenderID:  senderID,
		Type:      model.NotificationTypeFriendRejected,
		Message:   fmt.Sprintf("%s declined your friend request", displayName(senderName)),
		TargetID:  requestID,
		Timestamp: time.Now(),
	})
}

func (s *notificationService) NotifyFriendRemoved(userID, senderID, senderName string) error {
	return s.publish(FriendEventMessage{
		UserID:    userID,
		SenderID:  senderID,
		Type:      model.NotificationTypeFriendRemoved,
		Message:   fmt.Sprintf("%s removed you as a friend", displayName(senderName)),
		Timestamp: time.Now(),
	})
}

// publish hands the event to RabbitMQ, falling back to a direct table write
// when the broker is unavailable.
func (s *notificationService) publish(msg FriendEventMessage) error {
	if s.rabbitMQ != nil {
		if body, err := json.Marshal(msg); err == nil {
			pubErr := s.rabbitMQ.Publish(FriendEventExchange, FriendEventQueueName, body)
			if pubErr == nil {
				return nil
			}
			log.Printf("Failed to publish friend event, storing directly: %v", pubErr)
		}
	}

	return s.notifRepo.Create(notificationFromEvent(msg))
}

// notificationFromEvent maps a queue message onto a table row. Shared with
// the worker.
func notificationFromEvent(msg FriendEventMessage) *model.Notification {
	notification := &model.Notification{
		UserID:  msg.UserID,
		Type:    msg.Type,
		Message: msg.Message,
	}
	if msg.SenderID != "" {
		senderID := msg.SenderID
		notification.SenderID = &senderID
	}
	if msg.TargetID != "" {
		targetID := msg.TargetID
		notification.TargetID = &targetID
	}
	return notification
}

func displayName(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}

func (s *notificationService) List(userID string, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notifRepo.FindByUserID(userID, limit, offset)
}

func (s *notificationService) ListUnread(userID string) ([]*model.Notification, error) {
	return s.notifRepo.FindUnreadByUserID(userID)
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnread(userID)
}

func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	return s.notifRepo.MarkAsRead(notificationID, userID)
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifRepo.MarkAllAsRead(userID)
}
