package events

import (
	"time"

	"hard-backend/domain/core/entities"
)

// SourceBackend is the EventBridge source of every event this service emits.
const SourceBackend = "hard.backend"

// Event types
const (
	EventTypeObjectCreated = "object.created"
	EventTypeObjectUpdated = "object.updated"
	EventTypeObjectDeleted = "object.deleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// ObjectEvent is raised when a stored object is created, updated or deleted.
type ObjectEvent struct {
	BaseEvent
	ObjectType entities.ObjectType `json:"object_type"`
	ObjectID   string              `json:"object_id"`
	UserID     string              `json:"user_id"`
}

func newObjectEvent(eventType string, o *entities.Object, timestamp time.Time) ObjectEvent {
	id := o.ObjectID.String()
	return ObjectEvent{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   eventType,
			Timestamp:   timestamp,
			Version:     1,
		},
		ObjectType: o.ObjectType,
		ObjectID:   id,
		UserID:     o.UserID,
	}
}

// NewObjectCreated creates an object.created event
func NewObjectCreated(o *entities.Object, timestamp time.Time) ObjectEvent {
	return newObjectEvent(EventTypeObjectCreated, o, timestamp)
}

// NewObjectUpdated creates an object.updated event
func NewObjectUpdated(o *entities.Object, timestamp time.Time) ObjectEvent {
	return newObjectEvent(EventTypeObjectUpdated, o, timestamp)
}

// NewObjectDeleted creates an object.deleted event
func NewObjectDeleted(o *entities.Object, timestamp time.Time) ObjectEvent {
	return newObjectEvent(EventTypeObjectDeleted, o, timestamp)
}
