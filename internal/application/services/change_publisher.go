package services

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// changePublisher sends ChangeEvents when an event bus is configured.
// Publish failures are logged and never fail the mutation.
type changePublisher struct {
	bus providers.EventBus
}

func (p *changePublisher) publish(ctx context.Context, event *entities.ChangeEvent) {
	if p.bus == nil {
		return
	}
	channels := []string{
		providers.EventChannelChanges,
		providers.GetCollectionChannel(event.Collection),
	}
	for _, ch := range channels {
		if err := p.bus.Publish(ctx, ch, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("channel", ch).
				Str("collection", string(event.Collection)).
				Str("entity_id", event.EntityID).
				Msg("failed to publish change event")
		}
	}
}
