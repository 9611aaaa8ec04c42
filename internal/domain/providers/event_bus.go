package providers

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ChangeEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelChanges carries every ChangeEvent.
const EventChannelChanges = "hbnb:changes"

// EventChannelPrefix prefixes per-collection channels.
const EventChannelPrefix = "hbnb:"

// GetCollectionChannel returns the channel for one collection's changes
func GetCollectionChannel(c entities.Collection) string {
	return EventChannelPrefix + string(c)
}
