package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBus(t *testing.T) *Bus {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBus(client, nil)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := setupBus(t)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicAvatar)
	require.NoError(t, err)
	defer sub.Close()

	ev := New(TopicAvatar, "owner-1", "uploaded")
	ev.URL = "https://cdn/profile/owner-1/avatar/1.png"
	require.NoError(t, bus.Publish(ctx, ev))

	got := receive(t, sub)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, TopicAvatar, got.Topic)
	assert.Equal(t, ev.URL, got.URL)
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := setupBus(t)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicResume)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, New(TopicProjects, "owner-1", "created")))
	require.NoError(t, bus.Publish(ctx, New(TopicResume, "owner-1", "uploaded")))

	assert.Equal(t, TopicResume, receive(t, sub).Topic)
}

func TestBus_UnknownTopic(t *testing.T) {
	bus := setupBus(t)

	_, err := bus.Subscribe(context.Background(), "profile.banner")
	assert.ErrorIs(t, err, ErrUnknownTopic)

	err = bus.Publish(context.Background(), New("profile.banner", "o", "x"))
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestSubscription_CloseEndsDelivery(t *testing.T) {
	bus := setupBus(t)

	sub, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "second close is a no-op")

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}
}
