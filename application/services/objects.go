package services

import (
	"context"
	"fmt"
	"time"

	"hard-backend/application/ports"
	"hard-backend/domain/core/entities"
	"hard-backend/domain/events"
	pkgerrors "hard-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Objects provides ownership checked CRUD for one entity type.
//
// Create checks for an existing object_id and then writes; the two steps are
// separate store calls, so concurrent creates with the same id can both succeed.
type Objects[T any, PT entities.Record[T]] struct {
	store  ports.Store
	events ports.EventPublisher
	logger *zap.Logger
	kind   entities.ObjectType
	now    func() time.Time
}

// NewObjects creates the CRUD service for entity type T.
func NewObjects[T any, PT entities.Record[T]](store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *Objects[T, PT] {
	kind := entities.KindOf[T, PT]()
	return &Objects[T, PT]{
		store:  store,
		events: publisher,
		logger: logger.With(zap.String("objectType", kind.String())),
		kind:   kind,
		now:    time.Now,
	}
}

// Kind is the object type served.
func (s *Objects[T, PT]) Kind() entities.ObjectType { return s.kind }

// List returns every object of the type owned by userID, oldest first.
func (s *Objects[T, PT]) List(ctx context.Context, userID string) ([]PT, error) {
	items, err := s.store.Query(ctx, ports.Query{
		Partition: entities.PartitionKey(userID, s.kind),
	})
	if err != nil {
		return nil, err
	}
	return s.decodeAll(items)
}

// Get looks up id through the object_id index. A missing row and a row of a
// different type are both reported as not found; a row owned by someone else
// is reported as unauthorized.
func (s *Objects[T, PT]) Get(ctx context.Context, userID string, id uuid.UUID) (PT, error) {
	items, err := s.store.Query(ctx, ports.Query{
		Partition: id.String(),
		Index:     ports.ItemIndex,
	})
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		objectType, err := entities.ObjectTypeOf(item)
		if err != nil {
			return nil, err
		}
		if objectType != s.kind {
			continue
		}

		e, err := entities.UnmarshalItem[T, PT](item)
		if err != nil {
			return nil, err
		}
		if !e.Meta().OwnedBy(userID) {
			return nil, pkgerrors.NewItemAccessUnauthorizedError(
				fmt.Sprintf("`%s` with `object_id`: '%s' is not owned by the requesting user", s.kind, id))
		}
		return e, nil
	}

	return nil, s.notFound(id, "")
}

// Create stores a new object. A missing object_id is generated and a zero
// timestamp is set to the current time. The timestamp is returned as stored:
// UTC with microsecond precision.
func (s *Objects[T, PT]) Create(ctx context.Context, userID string, e PT) (PT, error) {
	meta := e.Meta()
	if meta.ObjectID == uuid.Nil {
		if err := meta.GenerateID(); err != nil {
			return nil, err
		}
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = s.now()
	}
	meta.Timestamp = entities.NormalizeTimestamp(meta.Timestamp)
	if meta.ObjectType == "" {
		meta.ObjectType = s.kind
	}
	if meta.ObjectType != s.kind {
		return nil, pkgerrors.NewInvalidAttributeChangeError("object_type")
	}

	if err := entities.CheckUserID(meta.UserID); err != nil {
		return nil, err
	}
	if err := s.checkUnused(ctx, userID, meta.ObjectID); err != nil {
		return nil, err
	}

	if !meta.OwnedBy(userID) {
		return nil, pkgerrors.NewItemAccessUnauthorizedError(
			fmt.Sprintf("Cannot create `%s` owned by another user", s.kind))
	}

	if err := s.put(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Object created",
		zap.String("objectID", meta.ObjectID.String()),
		zap.String("userID", userID),
	)
	s.publish(ctx, events.NewObjectCreated(meta, s.now()))
	return e, nil
}

// checkUnused fails if any row, of any type, already carries id. The
// caller's own row is a conflict; someone else's is unauthorized.
func (s *Objects[T, PT]) checkUnused(ctx context.Context, userID string, id uuid.UUID) error {
	items, err := s.store.Query(ctx, ports.Query{
		Partition: id.String(),
		Index:     ports.ItemIndex,
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		partition, err := entities.PartitionOf(item)
		if err != nil {
			return err
		}
		owner, objectType, err := entities.SplitPartition(partition)
		if err != nil {
			return err
		}
		if owner != userID {
			return pkgerrors.NewItemAccessUnauthorizedError(
				fmt.Sprintf("`object_id`: '%s' belongs to another user: Cannot Create", id))
		}
		return pkgerrors.NewItemAlreadyExistsError(
			fmt.Sprintf("Found `%s` with `object_id`: '%s': Cannot Create", objectType, id))
	}
	return nil
}

// Update overwrites the non-core attributes of an existing object.
func (s *Objects[T, PT]) Update(ctx context.Context, userID string, e PT) (PT, error) {
	meta := e.Meta()
	if !meta.OwnedBy(userID) {
		return nil, pkgerrors.NewItemAccessUnauthorizedError(
			fmt.Sprintf("Cannot update `%s` owned by another user", s.kind))
	}
	if meta.ObjectID == uuid.Nil {
		return nil, pkgerrors.ErrMissingObjectID
	}

	stored, err := s.Get(ctx, userID, meta.ObjectID)
	if err != nil {
		if pkgerrors.IsItemNotFound(err) {
			return nil, s.notFound(meta.ObjectID, "Cannot Update")
		}
		return nil, err
	}

	current := stored.Meta().CoreAttributes()
	for i, incoming := range meta.CoreAttributes() {
		if incoming.Value != current[i].Value {
			return nil, pkgerrors.NewInvalidAttributeChangeError(incoming.Name)
		}
	}
	meta.Timestamp = stored.Meta().Timestamp

	if err := s.put(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Object updated",
		zap.String("objectID", meta.ObjectID.String()),
		zap.String("userID", userID),
	)
	s.publish(ctx, events.NewObjectUpdated(meta, s.now()))
	return e, nil
}

// Delete removes an object and returns what was removed.
func (s *Objects[T, PT]) Delete(ctx context.Context, userID string, id uuid.UUID) (PT, error) {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		switch {
		case pkgerrors.IsItemNotFound(err):
			return nil, s.notFound(id, "Cannot Delete")
		case pkgerrors.IsItemAccessUnauthorized(err):
			return nil, pkgerrors.NewItemAccessUnauthorizedError(
				fmt.Sprintf("`%s` with `object_id`: '%s' is not owned by the requesting user: Cannot Delete", s.kind, id))
		}
		return nil, err
	}

	if err := s.remove(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// remove deletes an already fetched object.
func (s *Objects[T, PT]) remove(ctx context.Context, e PT) error {
	item, err := entities.MarshalItem[T, PT](e)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item); err != nil {
		return err
	}

	meta := e.Meta()
	s.logger.Info("Object deleted",
		zap.String("objectID", meta.ObjectID.String()),
		zap.String("userID", meta.UserID),
	)
	s.publish(ctx, events.NewObjectDeleted(meta, s.now()))
	return nil
}

// BatchGet returns the user's objects whose attribute equals one of matches.
func (s *Objects[T, PT]) BatchGet(ctx context.Context, userID, attribute string, matches []string) ([]PT, error) {
	items, err := s.store.BatchGet(ctx, userID, s.kind, attribute, matches)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(items)
}

// Filter queries the user's partition with an attribute filter.
func (s *Objects[T, PT]) Filter(ctx context.Context, userID string, filter map[string][]string) ([]PT, error) {
	items, err := s.store.Query(ctx, ports.Query{
		Partition: entities.PartitionKey(userID, s.kind),
		Filter:    filter,
	})
	if err != nil {
		return nil, err
	}
	return s.decodeAll(items)
}

func (s *Objects[T, PT]) put(ctx context.Context, e PT) error {
	item, err := entities.MarshalItem[T, PT](e)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, item)
}

func (s *Objects[T, PT]) decodeAll(items []entities.Item) ([]PT, error) {
	out := make([]PT, 0, len(items))
	for _, item := range items {
		e, err := entities.UnmarshalItem[T, PT](item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Objects[T, PT]) notFound(id uuid.UUID, suffix string) error {
	msg := fmt.Sprintf("No `%s` found with `object_id`: '%s'", s.kind, id)
	if suffix != "" {
		msg += ": " + suffix
	}
	return pkgerrors.NewItemNotFoundError(msg)
}

// publish is best effort: a failed publish never fails the request.
func (s *Objects[T, PT]) publish(ctx context.Context, event events.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("eventType", event.GetEventType()),
			zap.String("objectID", event.GetAggregateID()),
		)
	}
}
