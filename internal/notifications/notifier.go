// Package notifications publishes engagement events to Redis channels so
// realtime consumers can subscribe to them. Publishing is best-effort: the
// durable record is the notification row, not the pub/sub message.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"ripple/internal/models"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Event is the JSON payload published for each notification.
type Event struct {
	RecipientID uint              `json:"recipient_id"`
	ActorID     uint              `json:"actor_id"`
	Verb        string            `json:"verb"`
	TargetType  models.TargetType `json:"target_type"`
	TargetID    uint              `json:"target_id"`
}

// PublishNotification sends the notification as JSON to the recipient's channel.
func (n *Notifier) PublishNotification(ctx context.Context, notif *models.Notification) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Event{
		RecipientID: notif.RecipientID,
		ActorID:     notif.ActorID,
		Verb:        notif.Verb,
		TargetType:  notif.TargetType,
		TargetID:    notif.TargetID,
	})
	if err != nil {
		return err
	}
	return n.PublishUser(ctx, notif.RecipientID, string(payload))
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("notifications:user:%d", userID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
