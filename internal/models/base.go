package models

import (
	"time"

	"github.com/google/uuid"
)

// Base is the base model for all persisted documents. ID is a UUID string
// used as the Mongo _id.
type Base struct {
	ID        string    `bson:"_id"        json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created"`
	UpdatedAt time.Time `bson:"updated_at" json:"modified"`
}

// Touch fills ID and timestamps before the first insert.
func (b *Base) Touch() {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
