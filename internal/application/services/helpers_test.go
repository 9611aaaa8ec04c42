package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/memory"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
)

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if !strings.HasPrefix(hash, "hashed:") || strings.TrimPrefix(hash, "hashed:") != password {
		return errors.New("mismatch")
	}
	return nil
}

// MockEventBus records published events
type MockEventBus struct {
	mu     sync.Mutex
	events []*entities.ChangeEvent
	subs   chan *entities.ChangeEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subs: make(chan *entities.ChangeEvent, 16)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channel == "hbnb:changes" {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeEvent, error) {
	return m.subs, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (m *MockEventBus) Close() error { return nil }

func (m *MockEventBus) Events() []*entities.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.ChangeEvent(nil), m.events...)
}

// MockSearchRepository is a testify mock of repositories.PlaceSearchRepository
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Search(ctx context.Context, params repositories.PlaceSearchParams) ([]string, error) {
	args := m.Called(ctx, params)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchRepository) Index(ctx context.Context, place *entities.Place) error {
	return m.Called(ctx, place).Error(0)
}

func (m *MockSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixture struct {
	store     *memory.Store
	bus       *MockEventBus
	users     *services.UserService
	amenities *services.AmenityService
	places    *services.PlaceService
	reviews   *services.ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	bus := NewMockEventBus()

	f := &fixture{
		store:     store,
		bus:       bus,
		users:     services.NewUserService(store.Users(), plainHasher{}),
		amenities: services.NewAmenityService(store.Amenities()),
		places:    services.NewPlaceService(store.Places(), store.Users(), store.Amenities(), nil),
		reviews:   services.NewReviewService(store.Reviews(), store.Places(), store.Users()),
	}
	f.users.SetEventBus(bus)
	f.amenities.SetEventBus(bus)
	f.places.SetEventBus(bus)
	f.reviews.SetEventBus(bus)
	return f
}

func (f *fixture) user(t *testing.T, email string) *entities.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), entities.UserInput{
		FirstName: "First",
		LastName:  "Last",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) place(t *testing.T, ownerID string, amenityIDs ...string) *entities.Place {
	t.Helper()
	p, err := f.places.Create(context.Background(), entities.PlaceInput{
		Title:      "Sea view",
		Price:      100,
		Latitude:   43.7,
		Longitude:  7.26,
		OwnerID:    ownerID,
		AmenityIDs: amenityIDs,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) amenity(t *testing.T, name string) *entities.Amenity {
	t.Helper()
	a, err := f.amenities.Create(context.Background(), name)
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
