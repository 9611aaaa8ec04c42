package events

import (
	"context"
	"sync"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// LocalEventBus delivers events within one process. It backs single-instance
// deployments that run without Redis.
type LocalEventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.ChangeEvent]struct{}
	closed      bool
}

var _ providers.EventBus = (*LocalEventBus)(nil)

func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{subscribers: make(map[string]map[chan *entities.ChangeEvent]struct{})}
}

func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			observability.LoggerFromContext(ctx).Warn().
				Str("channel", channel).
				Str("event_id", event.ID).
				Msg("subscriber channel full, dropping event")
		}
	}
	return nil
}

func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeEvent, error) {
	eventChan := make(chan *entities.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(eventChan)
		return eventChan, nil
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.ChangeEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(channel, eventChan)
	}()
	return eventChan, nil
}

func (b *LocalEventBus) remove(channel string, eventChan chan *entities.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[channel][eventChan]; !ok {
		return
	}
	delete(b.subscribers[channel], eventChan)
	close(eventChan)
}

func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}
	b.closed = true
	return nil
}
