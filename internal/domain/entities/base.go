package entities

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and timestamps shared by every entity.
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBase assigns a fresh UUID and sets both timestamps to now (UTC).
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt. UpdatedAt never moves backwards.
func (b *Base) Touch() {
	now := time.Now().UTC()
	if now.Before(b.UpdatedAt) {
		now = b.UpdatedAt
	}
	b.UpdatedAt = now
}
