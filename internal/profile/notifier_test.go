package profile

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*RedisNotifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisNotifier(client), mr
}

func waitTick(t *testing.T, ticks <-chan struct{}) bool {
	t.Helper()
	select {
	case _, ok := <-ticks:
		return ok
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
		return false
	}
}

func TestRedisNotifier_PublishReachesSubscriber(t *testing.T) {
	n, mr := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks, err := n.Subscribe(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"profile:u1"}, mr.PubSubChannels(""))

	require.NoError(t, n.Publish(ctx, "u1"))
	assert.True(t, waitTick(t, ticks))

	require.NoError(t, n.Publish(ctx, "u2"))
	select {
	case <-ticks:
		t.Fatal("tick for another user's record")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisNotifier_TicksCloseOnCancel(t *testing.T) {
	n, _ := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())

	ticks, err := n.Subscribe(ctx, "u1")
	require.NoError(t, err)

	cancel()
	assert.False(t, waitTick(t, ticks))
}

func TestRedisNotifier_Errors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	n := NewRedisNotifier(client)

	err := n.Publish(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish profile change")

	_, err = n.Subscribe(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to subscribe to profile changes")
}

func TestGetChannel(t *testing.T) {
	assert.Equal(t, "profile:u1", getChannel("u1"))
}

func TestPump_CoalescesPendingTicks(t *testing.T) {
	msgs := make(chan *redis.Message, 3)
	ticks := make(chan struct{}, 1)
	for i := 0; i < 3; i++ {
		msgs <- &redis.Message{Channel: "profile:u1"}
	}
	close(msgs)

	pump(context.Background(), msgs, ticks)

	_, ok := <-ticks
	assert.True(t, ok)
	_, ok = <-ticks
	assert.False(t, ok, "ticks closed once messages end")
}

func TestPump_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan *redis.Message)
	ticks := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		pump(ctx, msgs, ticks)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump did not stop")
	}
}
