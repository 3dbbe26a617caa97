package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ripple/internal/observability"
)

// Notifier publishes conversation events into Redis channels. Every
// method tolerates a nil client so the app degrades to single-instance
// in-process delivery when Redis is down.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a Notifier backed by the given Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishConversation sends a payload to a conversation's channel.
// Callers treat this as fire-and-forget: a publish failure never rolls
// back the message that was already persisted.
func (n *Notifier) PublishConversation(ctx context.Context, conversationID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	if err := n.rdb.Publish(ctx, ConversationChannel(conversationID), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// StartConversationSubscriber subscribes to the conversation channel
// pattern and invokes onMessage for each event until ctx is done.
func (n *Notifier) StartConversationSubscriber(
	ctx context.Context, onMessage func(conversationID uint, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:conv:*")
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
				var conversationID uint
				if _, err := fmt.Sscanf(msg.Channel, "chat:conv:%d", &conversationID); err != nil {
					slog.Warn("ignoring message on unexpected channel", "channel", msg.Channel)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in conversation subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(conversationID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// ConversationChannel derives the Redis channel name for a conversation.
func ConversationChannel(conversationID uint) string {
	return "chat:conv:" + strconv.FormatUint(uint64(conversationID), 10)
}
