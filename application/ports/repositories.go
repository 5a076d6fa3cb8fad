package ports

import (
	"context"

	"hard-backend/domain/core/entities"
	"hard-backend/domain/events"
)

// ItemIndex is the secondary index keyed by object_id.
const ItemIndex = "ItemSearch"

// Query selects rows from the table.
//
// With an empty Index, Partition is matched against the partition key. With
// Index set to ItemIndex, Partition is matched against object_id. Filter maps
// an attribute name to the values it may take: every listed attribute must
// match one of its values.
type Query struct {
	Partition string
	Index     string
	Filter    map[string][]string
}

// Store is the storage adapter over the single table.
// This is a port in hexagonal architecture - the services don't know about the implementation
type Store interface {
	// Query returns every matching row, draining all result pages.
	Query(ctx context.Context, q Query) ([]entities.Item, error)

	// Put writes a row, replacing any row with the same keys.
	Put(ctx context.Context, item entities.Item) error

	// Delete removes the row with the item's keys.
	Delete(ctx context.Context, item entities.Item) error

	// BatchGet returns the rows of targetType owned by userID whose
	// searchAttribute equals one of matches.
	BatchGet(ctx context.Context, userID string, targetType entities.ObjectType, searchAttribute string, matches []string) ([]entities.Item, error)
}

// EventPublisher delivers domain events to subscribers outside the service.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
