// Package store defines the narrow document-database surface the
// repositories are written against: equality filters, single-field sort,
// result caps, point reads and change subscriptions. Implementations exist
// for MongoDB and for an in-memory database used in tests.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by point reads and ID-scoped writes when no
// document matches.
var ErrNotFound = errors.New("store: document not found")

// Filter is an equality-only filter: every key must match exactly.
type Filter map[string]interface{}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// FindOptions bound a Find call. A nil Sort means storage order.
type FindOptions struct {
	Sort  *Sort
	Limit int64
}

// Event describes a single document change observed by a subscription.
type Event struct {
	Collection string `json:"collection"`
	Op         string `json:"op"` // insert | update | delete
	DocumentID string `json:"document_id"`
}

// Subscription is a live change feed. Cancel is idempotent; after Cancel no
// further events are delivered and Events is eventually closed.
type Subscription interface {
	Events() <-chan Event
	Cancel()
}

// Collection is one named document set.
type Collection interface {
	InsertOne(ctx context.Context, doc interface{}) error
	FindByID(ctx context.Context, id string, out interface{}) error
	// Find decodes every matching document into out (a *[]T). Queries that
	// combine a filter with a sort may fail with an index-unavailable error
	// when the backing store lacks the composite index; callers degrade via
	// FindOrdered.
	Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error
	UpdateByID(ctx context.Context, id string, set map[string]interface{}) error
	DeleteByID(ctx context.Context, id string) error
	Watch(ctx context.Context) (Subscription, error)
}

// Database hands out collections by name.
type Database interface {
	Collection(name string) Collection
}

// IndexUnavailableError marks a query the store refused because the index
// it needs does not exist.
type IndexUnavailableError struct {
	Reason string
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("store: index unavailable: %s", e.Reason)
}
