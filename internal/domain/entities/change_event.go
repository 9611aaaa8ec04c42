package entities

import (
	"time"

	"github.com/google/uuid"
)

// Collection names a kind of stored entity. Values double as cache key segments.
type Collection string

const (
	CollectionUsers     Collection = "users"
	CollectionPlaces    Collection = "places"
	CollectionReviews   Collection = "reviews"
	CollectionAmenities Collection = "amenities"
)

// ChangeAction is the mutation that produced a ChangeEvent.
type ChangeAction string

const (
	ChangeActionCreated ChangeAction = "created"
	ChangeActionUpdated ChangeAction = "updated"
	ChangeActionDeleted ChangeAction = "deleted"
)

// ChangeEvent is published after a successful mutation.
type ChangeEvent struct {
	ID         string       `json:"id"`
	Collection Collection   `json:"collection"`
	Action     ChangeAction `json:"action"`
	EntityID   string       `json:"entity_id"`
	// Related lists entity IDs in other collections whose representations embed this entity.
	Related   map[Collection][]string `json:"related,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// NewChangeEvent creates an event stamped with a fresh ID and the current time.
func NewChangeEvent(collection Collection, action ChangeAction, entityID string) *ChangeEvent {
	return &ChangeEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		Action:     action,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}
}

// WithRelated records related IDs and returns the event.
func (e *ChangeEvent) WithRelated(c Collection, ids ...string) *ChangeEvent {
	if len(ids) == 0 {
		return e
	}
	if e.Related == nil {
		e.Related = make(map[Collection][]string)
	}
	e.Related[c] = append(e.Related[c], ids...)
	return e
}
