package service

import (
	"encoding/json"
	"log"

	"studybuddy/internal/repository"
	"studybuddy/internal/util"
)

// NotificationWorker consumes friend events from RabbitMQ and persists them
// as notification rows for the polling feed.
type NotificationWorker struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
	stopChan  chan bool
}

func NewNotificationWorker(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) *NotificationWorker {
	return &NotificationWorker{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
		stopChan:  make(chan bool),
	}
}

// Start begins consuming friend events in a background goroutine.
func (w *NotificationWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // RabbitMQ not available, worker will not start
	}

	if err := w.rabbitMQ.DeclareQueue(FriendEventExchange, FriendEventQueueName); err != nil {
		return err
	}

	deliveries, err := w.rabbitMQ.Consume(FriendEventQueueName)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-w.stopChan:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					log.Println("Friend event channel closed, worker stopping")
					return
				}

				var msg FriendEventMessage
				if err := json.Unmarshal(delivery.Body, &msg); err != nil {
					log.Printf("Failed to unmarshal friend event: %v", err)
					delivery.Nack(false, false) // drop malformed messages
					continue
				}

				if err := w.notifRepo.Create(notificationFromEvent(msg)); err != nil {
					log.Printf("Failed to store notification: %v", err)
					delivery.Nack(false, true) // requeue, storage may recover
					continue
				}

				delivery.Ack(false)
			}
		}
	}()

	log.Println("Notification worker started")
	return nil
}

// Stop signals the consumer goroutine to exit.
func (w *NotificationWorker) Stop() {
	close(w.stopChan)
}
