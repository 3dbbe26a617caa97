package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	t.Parallel()
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishConversation(context.Background(), 1, "payload"))
	assert.NoError(t, n.StartConversationSubscriber(context.Background(), func(uint, string) {
		t.Error("subscriber callback should never fire without Redis")
	}))
}

func TestConversationChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "chat:conv:5", ConversationChannel(5))
	assert.Equal(t, "chat:conv:120", ConversationChannel(120))
}

func TestNotifier_PublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type event struct {
		convID  uint
		payload string
	}
	events := make(chan event, 2)
	require.NoError(t, n.StartConversationSubscriber(ctx, func(convID uint, payload string) {
		events <- event{convID: convID, payload: payload}
	}))

	require.NoError(t, n.PublishConversation(context.Background(), 7, `{"type":"newMessage"}`))

	select {
	case got := <-events:
		assert.Equal(t, uint(7), got.convID)
		assert.Equal(t, `{"type":"newMessage"}`, got.payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the published event")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	var received int32
	require.NoError(t, n.StartConversationSubscriber(ctx, func(uint, string) {
		atomic.AddInt32(&received, 1)
	}))

	require.NoError(t, n.PublishConversation(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishConversation(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) > 1
	}, 200*time.Millisecond, 10*time.Millisecond)
}
