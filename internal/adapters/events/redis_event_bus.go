package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	redisclient "github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/redis"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

const subscriberBuffer = 100

// RedisEventBus carries change events between API instances over Redis Pub/Sub.
// All local subscribers share one pattern subscription on providers.EventChannelPrefix+"*",
// so only channels under that prefix can be subscribed to.
type RedisEventBus struct {
	client *redisclient.Client

	mu          sync.RWMutex
	pubsub      *redis.PubSub
	subscribers map[string]map[chan *entities.ChangeEvent]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

var _ providers.EventBus = (*RedisEventBus)(nil)

func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:      client,
		subscribers: make(map[string]map[chan *entities.ChangeEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish sends the event as JSON to every instance subscribed to channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("collection", string(event.Collection)).
		Str("action", string(event.Action)).
		Str("entity_id", event.EntityID).
		Msg("published change event")
	return nil
}

// Subscribe returns a channel of events published on channel. It is closed
// when ctx is cancelled, the channel is unsubscribed or the bus is closed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeEvent, error) {
	if !strings.HasPrefix(channel, providers.EventChannelPrefix) {
		return nil, fmt.Errorf("channel %q is outside %q", channel, providers.EventChannelPrefix)
	}

	eventChan := make(chan *entities.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		close(eventChan)
		return eventChan, nil
	}
	if b.pubsub == nil {
		b.pubsub = b.client.Client().PSubscribe(b.ctx, providers.EventChannelPrefix+"*")
		go b.dispatch(b.pubsub)
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.ChangeEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}
	count := len(b.subscribers[channel])
	b.mu.Unlock()

	observability.GetLogger().Info().
		Str("channel", channel).
		Int("subscribers", count).
		Msg("subscribed to change events")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// dispatch routes pattern messages to the subscribers of their concrete channel
func (b *RedisEventBus) dispatch(pubsub *redis.PubSub) {
	logger := observability.GetLogger().With().Str("pattern", providers.EventChannelPrefix+"*").Logger()

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			event := &entities.ChangeEvent{}
			if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
				logger.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed change event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[msg.Channel] {
				select {
				case subscriber <- event:
				default:
					logger.Warn().
						Str("channel", msg.Channel).
						Str("event_id", event.ID).
						Msg("subscriber channel full, dropping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[channel]
	if _, ok := subscribers[eventChan]; !ok {
		return
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
	}
}

// Unsubscribe closes every local subscriber of channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close stops dispatching, closes every subscriber and drops the Redis subscription
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}

	var result *multierror.Error
	if b.pubsub != nil {
		if err := b.pubsub.PUnsubscribe(context.Background()); err != nil {
			result = multierror.Append(result, fmt.Errorf("punsubscribe: %w", err))
		}
		if err := b.pubsub.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close subscription: %w", err))
		}
		b.pubsub = nil
	}
	return result.ErrorOrNil()
}
