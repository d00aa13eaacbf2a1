// Package notifications publishes post and comment lifecycle events to Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"inkpost/internal/middleware"
	"inkpost/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types published by the services.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// BroadcastChannel carries every event.
const BroadcastChannel = "inkpost:events"

// Event is the JSON envelope published to Redis.
type Event struct {
	Type      string `json:"type"`
	PostID    uint   `json:"post_id"`
	CommentID uint   `json:"comment_id,omitempty"`
	ActorID   uint   `json:"actor_id"`

	// RecipientID is the post author to notify, when it differs from the actor.
	RecipientID uint      `json:"recipient_id,omitempty"`
	At          time.Time `json:"at"`
}

// UserChannel is the per-user notification channel.
func UserChannel(userID uint) string {
	return fmt.Sprintf("inkpost:notifications:user:%d", userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client yields a Notifier that drops every event.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// Publish sends ev to the broadcast channel and, when set, to the recipient's channel.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = n.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, BroadcastChannel, payload)
	if ev.RecipientID != 0 && ev.RecipientID != ev.ActorID {
		pipe.Publish(ctx, UserChannel(ev.RecipientID), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	observability.EventsPublished.WithLabelValues(ev.Type).Inc()
	return nil
}

// PublishAsync publishes ev in the background on a context detached from
// the request. Failures are logged only.
func (n *Notifier) PublishAsync(ctx context.Context, ev Event) {
	if n == nil || n.rdb == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, 5*time.Second)
		defer cancel()
		if err := n.Publish(ctx, ev); err != nil {
			middleware.Logger.WarnContext(ctx, "event publish failed",
				slog.String("event_type", ev.Type),
				slog.String("error", err.Error()),
			)
		}
	}()
}
