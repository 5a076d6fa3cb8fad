package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hard-backend/domain/core/entities"
	"hard-backend/domain/events"
	"hard-backend/infrastructure/persistence/memory"
	pkgerrors "hard-backend/pkg/errors"
)

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

const (
	alice = "user-a"
	bob   = "user-b"
)

func newWorkouts(t *testing.T) (*WorkoutService, *memory.Store) {
	t.Helper()
	store := memory.NewStore(zap.NewNop())
	service := NewObjects[entities.Workout](store, nil, zap.NewNop())
	service.now = tickingClock()
	return service, store
}

func workout(userID, date string) *entities.Workout {
	return &entities.Workout{
		Object: entities.Object{UserID: userID},
		Date:   date,
	}
}

func TestObjects_Create_ThenGetReturnsEntity(t *testing.T) {
	// Arrange
	service, _ := newWorkouts(t)
	ctx := context.Background()

	// Act
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)
	fetched, err := service.Get(ctx, alice, created.ObjectID)

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ObjectID)
	assert.False(t, created.Timestamp.IsZero())
	assert.Equal(t, entities.ObjectTypeWorkout, created.ObjectType)
	assert.Equal(t, created, fetched)
}

func TestObjects_Create_KeepsSuppliedIdentity(t *testing.T) {
	service, _ := newWorkouts(t)
	w := workout(alice, "2024-07-06")
	w.ObjectID = uuid.New()
	w.Timestamp = time.Date(2024, 7, 6, 8, 0, 0, 0, time.UTC)

	created, err := service.Create(context.Background(), alice, w)

	require.NoError(t, err)
	assert.Equal(t, w.ObjectID, created.ObjectID)
	assert.Equal(t, w.Timestamp, created.Timestamp)
}

func TestObjects_Create_ExistingIDFails(t *testing.T) {
	// Arrange
	service, store := newWorkouts(t)
	ctx := context.Background()
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	duplicate := workout(alice, "2024-07-07")
	duplicate.ObjectID = created.ObjectID

	// Act
	_, err = service.Create(ctx, alice, duplicate)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsItemAlreadyExists(err))
	assert.Contains(t, err.Error(), "Found `Workout` with `object_id`: '"+created.ObjectID.String()+"': Cannot Create")
	assert.Equal(t, 1, store.Len())
}

func TestObjects_Create_ForAnotherUserFails(t *testing.T) {
	service, store := newWorkouts(t)

	_, err := service.Create(context.Background(), alice, workout(bob, "2024-07-06"))

	assert.True(t, pkgerrors.IsItemAccessUnauthorized(err))
	assert.Equal(t, 0, store.Len())
}

func TestObjects_Create_WrongObjectTypeFails(t *testing.T) {
	service, store := newWorkouts(t)
	w := workout(alice, "2024-07-06")
	w.ObjectType = entities.ObjectTypeSet

	_, err := service.Create(context.Background(), alice, w)

	assert.True(t, pkgerrors.IsInvalidAttributeChange(err))
	assert.Equal(t, 0, store.Len())
}

func TestObjects_Create_NormalizesSuppliedTimestamp(t *testing.T) {
	// Arrange
	service, _ := newWorkouts(t)
	ctx := context.Background()
	berlin := time.FixedZone("CEST", 2*60*60)
	w := workout(alice, "2024-07-06")
	w.Timestamp = time.Date(2024, 7, 6, 12, 0, 0, 123456789, berlin)

	// Act
	created, err := service.Create(ctx, alice, w)
	require.NoError(t, err)
	fetched, err := service.Get(ctx, alice, created.ObjectID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 6, 10, 0, 0, 123456000, time.UTC), created.Timestamp)
	assert.Equal(t, created, fetched)
}

func TestObjects_Update_ReturnsStoredTimestamp(t *testing.T) {
	ctx := context.Background()
	service, _ := newWorkouts(t)
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	changed := *created
	changed.Notes = "tempo"
	changed.Timestamp = created.Timestamp.In(time.FixedZone("EST", -5*60*60)).Add(300 * time.Nanosecond)

	updated, err := service.Update(ctx, alice, &changed)
	require.NoError(t, err)
	fetched, err := service.Get(ctx, alice, created.ObjectID)

	require.NoError(t, err)
	assert.Equal(t, created.Timestamp, updated.Timestamp)
	assert.Equal(t, updated, fetched)
}

func TestObjects_Create_ObjectIDUniqueAcrossTypes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		creator string
		wantErr func(error) bool
	}{
		{"same owner", alice, pkgerrors.IsItemAlreadyExists},
		{"other owner", bob, pkgerrors.IsItemAccessUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			workouts, store := newWorkouts(t)
			exercises := NewObjects[entities.Exercise](store, nil, zap.NewNop())
			w, err := workouts.Create(ctx, alice, workout(alice, "2024-07-06"))
			require.NoError(t, err)

			// Act
			_, err = exercises.Create(ctx, tt.creator, &entities.Exercise{
				Object: entities.Object{UserID: tt.creator, ObjectID: w.ObjectID},
				Name:   "Squat",
			})

			// Assert
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), err.Error())
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestObjects_Create_RejectsDelimiterInUserID(t *testing.T) {
	service, store := newWorkouts(t)
	const tenant = "tenant#42"

	_, err := service.Create(context.Background(), tenant, workout(tenant, "2024-07-06"))

	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrorTypeInvalidPartition, pkgerrors.GetAppError(err).Type)
	assert.Equal(t, 0, store.Len())
}

func TestObjects_Update_CoreAttributeChangeFails(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(w *entities.Workout)
		attribute string
	}{
		{"timestamp", func(w *entities.Workout) { w.Timestamp = w.Timestamp.Add(time.Second) }, "timestamp"},
		{"object_type", func(w *entities.Workout) { w.ObjectType = entities.ObjectTypeTemplate }, "object_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			service, store := newWorkouts(t)
			created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
			require.NoError(t, err)
			before, err := store.Query(ctx, queryAll(alice))
			require.NoError(t, err)

			changed := *created
			changed.Notes = "edited"
			tt.mutate(&changed)

			// Act
			_, err = service.Update(ctx, alice, &changed)

			// Assert
			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvalidAttributeChange(err))
			assert.Equal(t, tt.attribute, pkgerrors.GetAppError(err).Details["attribute"])
			after, err := store.Query(ctx, queryAll(alice))
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestObjects_Update_ChangedOwnerFails(t *testing.T) {
	ctx := context.Background()
	service, _ := newWorkouts(t)
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	changed := *created
	changed.UserID = bob

	_, err = service.Update(ctx, alice, &changed)

	assert.True(t, pkgerrors.IsItemAccessUnauthorized(err))
}

func TestObjects_Update_OverwritesNonCoreAttributes(t *testing.T) {
	ctx := context.Background()
	service, store := newWorkouts(t)
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	changed := *created
	changed.Notes = "deadlift day"
	changed.Date = "2024-07-07"

	updated, err := service.Update(ctx, alice, &changed)
	require.NoError(t, err)
	fetched, err := service.Get(ctx, alice, created.ObjectID)

	require.NoError(t, err)
	assert.Equal(t, updated, fetched)
	assert.Equal(t, "deadlift day", fetched.Notes)
	assert.Equal(t, 1, store.Len())
}

func TestObjects_Update_MissingObjectIDIsProgrammingError(t *testing.T) {
	service, _ := newWorkouts(t)

	_, err := service.Update(context.Background(), alice, workout(alice, "2024-07-06"))

	assert.ErrorIs(t, err, pkgerrors.ErrMissingObjectID)
}

func TestObjects_Update_UnknownIDFails(t *testing.T) {
	service, _ := newWorkouts(t)
	w := workout(alice, "2024-07-06")
	w.ObjectID = uuid.New()

	_, err := service.Update(context.Background(), alice, w)

	assert.True(t, pkgerrors.IsItemNotFound(err))
	assert.Contains(t, err.Error(), "Cannot Update")
}

func TestObjects_NonOwnerIsRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, store := newWorkouts(t)
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	// Act
	_, getErr := service.Get(ctx, bob, created.ObjectID)
	_, deleteErr := service.Delete(ctx, bob, created.ObjectID)
	stolen := *created
	stolen.UserID = bob
	_, updateErr := service.Update(ctx, bob, &stolen)

	// Assert
	assert.True(t, pkgerrors.IsItemAccessUnauthorized(getErr))
	assert.True(t, pkgerrors.IsItemAccessUnauthorized(deleteErr))
	assert.True(t, pkgerrors.IsItemAccessUnauthorized(updateErr))
	assert.Equal(t, 1, store.Len())
}

func TestObjects_DeleteThenGetFails(t *testing.T) {
	ctx := context.Background()
	service, store := newWorkouts(t)
	created, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	deleted, err := service.Delete(ctx, alice, created.ObjectID)
	require.NoError(t, err)
	_, err = service.Get(ctx, alice, created.ObjectID)

	assert.Equal(t, created, deleted)
	assert.True(t, pkgerrors.IsItemNotFound(err))
	assert.Equal(t, "No `Workout` found with `object_id`: '"+created.ObjectID.String()+"'", pkgerrors.GetAppError(err).Message)
	assert.Equal(t, 0, store.Len())

	_, err = service.Delete(ctx, alice, created.ObjectID)
	assert.Contains(t, err.Error(), "Cannot Delete")
}

func TestObjects_Get_OtherObjectTypeIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	workouts := NewObjects[entities.Workout](store, nil, zap.NewNop())
	exercises := NewObjects[entities.Exercise](store, nil, zap.NewNop())
	exercise, err := exercises.Create(ctx, alice, &entities.Exercise{Object: entities.Object{UserID: alice}, Name: "Squat"})
	require.NoError(t, err)

	_, err = workouts.Get(ctx, alice, exercise.ObjectID)

	assert.True(t, pkgerrors.IsItemNotFound(err))
}

func TestObjects_List_ScopedToUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, _ := newWorkouts(t)
	w1, err := service.Create(ctx, alice, workout(alice, "2024-07-06"))
	require.NoError(t, err)

	// Act
	aliceWorkouts, err := service.List(ctx, alice)
	require.NoError(t, err)
	bobWorkouts, err := service.List(ctx, bob)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []*entities.Workout{w1}, aliceWorkouts)
	assert.Empty(t, bobWorkouts)
}

func TestObjects_PublishesLifecycleEvents(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	publisher := new(MockEventPublisher)
	service := NewObjects[entities.Tag](store, publisher, zap.NewNop())

	for _, eventType := range []string{events.EventTypeObjectCreated, events.EventTypeObjectUpdated, events.EventTypeObjectDeleted} {
		eventType := eventType
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.DomainEvent) bool {
			oe, ok := e.(events.ObjectEvent)
			return ok && oe.EventType == eventType && oe.ObjectType == entities.ObjectTypeTag && oe.UserID == alice
		})).Return(nil).Once()
	}

	// Act
	tag, err := service.Create(ctx, alice, &entities.Tag{Object: entities.Object{UserID: alice}, Name: "pr", ColorHex: "#00ff00"})
	require.NoError(t, err)
	tag.Name = "personal record"
	_, err = service.Update(ctx, alice, tag)
	require.NoError(t, err)
	_, err = service.Delete(ctx, alice, tag.ObjectID)
	require.NoError(t, err)

	// Assert
	publisher.AssertExpectations(t)
}

func TestObjects_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := memory.NewStore(zap.NewNop())
	publisher := new(MockEventPublisher)
	service := NewObjects[entities.Template](store, publisher, zap.NewNop())
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus unavailable"))

	_, err := service.Create(context.Background(), alice, &entities.Template{Object: entities.Object{UserID: alice}, Name: "Push day"})

	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
