package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// HTTPCachePrefix is the key prefix used by the response cache middleware.
const HTTPCachePrefix = "http:cache:"

// HTTPCachePattern matches every cached response for a collection.
func HTTPCachePattern(c entities.Collection) string {
	return fmt.Sprintf("%s%s:*", HTTPCachePrefix, c)
}

// dependents lists collections whose representations embed the changed collection.
var dependents = map[entities.Collection][]entities.Collection{
	entities.CollectionUsers:     {entities.CollectionPlaces, entities.CollectionReviews},
	entities.CollectionPlaces:    {entities.CollectionReviews},
	entities.CollectionReviews:   {entities.CollectionPlaces},
	entities.CollectionAmenities: {entities.CollectionPlaces},
}

// CacheInvalidationService drops cached responses when change events arrive
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelChanges)
	if err != nil {
		return fmt.Errorf("failed to subscribe to change events: %w", err)
	}

	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	observability.GetLogger().Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.ChangeEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.HandleEvent(ctx, event); err != nil {
				observability.GetLogger().Warn().Err(err).Str("event_id", event.ID).Msg("cache invalidation failed")
			}
			cancel()
		}
	}
}

// HandleEvent drops the changed collection's cached responses and those of its dependents.
// Readers may see stale data for the time it takes an event to arrive.
func (s *CacheInvalidationService) HandleEvent(ctx context.Context, event *entities.ChangeEvent) error {
	collections := append([]entities.Collection{event.Collection}, dependents[event.Collection]...)
	for _, c := range collections {
		if err := s.InvalidateCollection(ctx, c); err != nil {
			return err
		}
	}
	observability.LoggerFromContext(ctx).Debug().
		Str("collection", string(event.Collection)).
		Str("action", string(event.Action)).
		Str("entity_id", event.EntityID).
		Msg("invalidated cached responses")
	return nil
}

// InvalidateCollection deletes every cached response for one collection
func (s *CacheInvalidationService) InvalidateCollection(ctx context.Context, c entities.Collection) error {
	pattern := HTTPCachePattern(c)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
	}
	return nil
}
