package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*miniredis.Miniredis, *Notifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	n := NewNotifier(rdb)
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return mr, n
}

func TestPublish_BroadcastAndRecipient(t *testing.T) {
	mr, n := newTestNotifier(t)
	ctx := context.Background()

	broadcast := mr.NewSubscriber()
	broadcast.Subscribe(BroadcastChannel)
	author := mr.NewSubscriber()
	author.Subscribe(UserChannel(1))

	require.NoError(t, n.Publish(ctx, Event{Type: EventCommentCreated, PostID: 10, CommentID: 3, ActorID: 2, RecipientID: 1}))

	select {
	case msg := <-broadcast.Messages():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Message), &ev))
		assert.Equal(t, EventCommentCreated, ev.Type)
		assert.Equal(t, uint(10), ev.PostID)
		assert.Equal(t, 2026, ev.At.Year())
	case <-time.After(time.Second):
		t.Fatal("no broadcast message")
	}

	select {
	case msg := <-author.Messages():
		assert.Equal(t, UserChannel(1), msg.Channel)
	case <-time.After(time.Second):
		t.Fatal("no recipient message")
	}
}

func TestPublish_SelfActionSkipsRecipient(t *testing.T) {
	mr, n := newTestNotifier(t)

	self := mr.NewSubscriber()
	self.Subscribe(UserChannel(4))

	require.NoError(t, n.Publish(context.Background(), Event{Type: EventPostLiked, PostID: 1, ActorID: 4, RecipientID: 4}))

	select {
	case <-self.Messages():
		t.Fatal("actor should not be notified of their own action")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNilNotifierDropsEvents(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), Event{Type: EventPostCreated}))
	n.PublishAsync(context.Background(), Event{Type: EventPostCreated})

	var none *Notifier
	assert.NoError(t, none.Publish(context.Background(), Event{}))
}
