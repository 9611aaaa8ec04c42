package services_test

import (
	"context"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
)

// MockCacheProvider is an in-memory cache provider for testing
type MockCacheProvider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expiration int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	m.deleted = append(m.deleted, pattern)
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) Incr(ctx context.Context, key string, expiration int) (int64, error) {
	return 1, nil
}

func (m *MockCacheProvider) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

func (m *MockCacheProvider) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

func TestCacheInvalidationService_HandleEvent(t *testing.T) {
	tests := []struct {
		name       string
		collection entities.Collection
		want       []string
	}{
		{
			name:       "users invalidate places and reviews",
			collection: entities.CollectionUsers,
			want:       []string{"http:cache:users:*", "http:cache:places:*", "http:cache:reviews:*"},
		},
		{
			name:       "reviews invalidate places",
			collection: entities.CollectionReviews,
			want:       []string{"http:cache:reviews:*", "http:cache:places:*"},
		},
		{
			name:       "amenities invalidate places",
			collection: entities.CollectionAmenities,
			want:       []string{"http:cache:amenities:*", "http:cache:places:*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMockCacheProvider()
			svc := services.NewCacheInvalidationService(cache, NewMockEventBus())

			err := svc.HandleEvent(context.Background(), entities.NewChangeEvent(tt.collection, entities.ChangeActionUpdated, "id-1"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cache.Deleted())
		})
	}
}

func TestCacheInvalidationService_DropsMatchingKeysOnly(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheProvider()
	require.NoError(t, cache.Set(ctx, "http:cache:places:abc", []byte("{}"), 60))
	require.NoError(t, cache.Set(ctx, "http:cache:amenities:abc", []byte("{}"), 60))

	svc := services.NewCacheInvalidationService(cache, NewMockEventBus())
	require.NoError(t, svc.InvalidateCollection(ctx, entities.CollectionPlaces))

	assert.False(t, cache.Has("http:cache:places:abc"))
	assert.True(t, cache.Has("http:cache:amenities:abc"))
}

func TestCacheInvalidationService_StartStop(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheProvider()
	require.NoError(t, cache.Set(ctx, "http:cache:reviews:list", []byte("[]"), 60))
	bus := NewMockEventBus()

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())

	bus.subs <- entities.NewChangeEvent(entities.CollectionPlaces, entities.ChangeActionDeleted, "p1")
	assert.Eventually(t, func() bool { return !cache.Has("http:cache:reviews:list") }, time.Second, 10*time.Millisecond)

	svc.Stop()
}
