package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier announces record changes over Redis pub/sub
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// getChannel generates the pub/sub channel for a user's record
func getChannel(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Publish tells subscribers the record changed
func (n *RedisNotifier) Publish(ctx context.Context, userID string) error {
	if err := n.client.Publish(ctx, getChannel(userID), time.Now().UnixMilli()).Err(); err != nil {
		return fmt.Errorf("failed to publish profile change: %w", err)
	}
	return nil
}

// Subscribe returns a channel that ticks after each change. It is closed
// once ctx is done or the subscription drops.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, error) {
	pubsub := n.client.Subscribe(ctx, getChannel(userID))

	// Wait for the subscription confirmation so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to profile changes: %w", err)
	}

	ticks := make(chan struct{}, 1)
	go func() {
		defer pubsub.Close()
		pump(ctx, pubsub.Channel(), ticks)
	}()

	return ticks, nil
}

// pump forwards messages as ticks. While a tick is still pending further
// messages collapse into it, since the reader reloads the whole record.
func pump(ctx context.Context, msgs <-chan *redis.Message, ticks chan<- struct{}) {
	defer close(ticks)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case ticks <- struct{}{}:
			default:
			}
		}
	}
}
