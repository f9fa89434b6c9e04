package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "portfolio:events:" // portfolio:events:{topic}

// Publisher is what mutating services depend on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus publishes and subscribes to events on Redis channels.
type Bus struct {
	client *redis.Client
	log    *zap.Logger
}

func NewBus(client *redis.Client, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{client: client, log: log}
}

func channel(topic string) string { return channelPrefix + topic }

func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if !knownTopic(ev.Topic) {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, ev.Topic)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channel(ev.Topic), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Topic, err)
	}
	return nil
}

// Subscription delivers events until Close is called. Holders must Close it
// when they go away or the Redis connection leaks.
type Subscription struct {
	C <-chan Event

	ps   *redis.PubSub
	done chan struct{}
	once sync.Once
	err  error
}

// Subscribe listens on the given topics, or on all of them when none are
// named. It returns once Redis has confirmed the subscription.
func (b *Bus) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	if len(topics) == 0 {
		topics = Topics
	}
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		if !knownTopic(t) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, t)
		}
		channels = append(channels, channel(t))
	}

	ps := b.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, 16)
	sub := &Subscription{C: out, ps: ps, done: make(chan struct{})}
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

// Close cancels the subscription. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.ps.Close()
	})
	return s.err
}
