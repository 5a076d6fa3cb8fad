package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "hard-backend/pkg/errors"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func TestMarshalItem_WritesTableKeys(t *testing.T) {
	// Arrange
	id := uuid.New()
	joinID := uuid.New()
	ts := time.Date(2024, 3, 9, 7, 5, 3, 123456789, time.FixedZone("CET", 3600))
	set := &Set{
		Object: Object{
			UserID:     "user-1",
			Timestamp:  ts,
			ObjectType: ObjectTypeSet,
			ObjectID:   id,
		},
		SetType:        SetTypeWorking,
		Weight:         102.5,
		Unit:           WeightUnitKilograms,
		Reps:           5,
		Notes:          "felt heavy",
		ExerciseJoinID: joinID,
	}

	// Act
	item, err := MarshalItem(set)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, s("user-1#Set"), item[PartitionAttribute])
	assert.Equal(t, s("2024-03-09T06:05:03.123456Z"), item[SortAttribute])
	assert.Equal(t, s(id.String()), item[IDAttribute])
	assert.Equal(t, s("working"), item["set_type"])
	assert.Equal(t, s("kg"), item["unit"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "102.5"}, item["weight"])
	assert.Equal(t, s(joinID.String()), item["exercise_join_id"])
}

func TestUnmarshalItem_RestoresEntity(t *testing.T) {
	// Arrange
	original := &ExerciseJoin{
		Object: Object{
			UserID:     "user-1",
			Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC),
			ObjectType: ObjectTypeExerciseJoin,
			ObjectID:   uuid.New(),
		},
		WorkoutID:  uuid.New(),
		ExerciseID: uuid.New(),
	}
	item, err := MarshalItem(original)
	require.NoError(t, err)

	// Act
	decoded, err := UnmarshalItem[ExerciseJoin](item)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalItem_MissingPartition(t *testing.T) {
	item := Item{
		SortAttribute: s("2024-01-02T03:04:05.000000Z"),
		IDAttribute:   s(uuid.NewString()),
		"name":        s("Squat"),
	}

	_, err := UnmarshalItem[Exercise](item)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMissingPartition))
}

func TestUnmarshalItem_PartitionWithoutDelimiter(t *testing.T) {
	item := Item{
		PartitionAttribute: s("user-1Exercise"),
		SortAttribute:      s("2024-01-02T03:04:05.000000Z"),
		IDAttribute:        s(uuid.NewString()),
		"name":             s("Squat"),
	}

	_, err := UnmarshalItem[Exercise](item)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidPartition))
}

func TestObjectTypeOf(t *testing.T) {
	objectType, err := ObjectTypeOf(Item{PartitionAttribute: s("user-1#TagJoin")})
	require.NoError(t, err)
	assert.Equal(t, ObjectTypeTagJoin, objectType)

	_, err = ObjectTypeOf(Item{})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMissingPartition))
}

func TestGenerateID(t *testing.T) {
	t.Run("assigns a random identity", func(t *testing.T) {
		w := &Workout{}

		require.NoError(t, w.GenerateID())

		assert.NotEqual(t, uuid.Nil, w.ObjectID)
		assert.Equal(t, uuid.Version(4), w.ObjectID.Version())
	})

	t.Run("refuses to reassign", func(t *testing.T) {
		w := &Workout{}
		require.NoError(t, w.GenerateID())
		first := w.ObjectID

		err := w.GenerateID()

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeIdentityAlreadyAssigned))
		assert.Equal(t, first, w.ObjectID)
	})
}

func TestOwnedBy(t *testing.T) {
	tag := &Tag{Object: Object{UserID: "user-1"}}

	assert.True(t, tag.OwnedBy("user-1"))
	assert.False(t, tag.OwnedBy("user-2"))
}

func TestCoreAttributes(t *testing.T) {
	id := uuid.New()
	o := Object{
		UserID:     "user-1",
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		ObjectType: ObjectTypeWorkout,
		ObjectID:   id,
	}

	assert.Equal(t, []Attribute{
		{Name: "user_id", Value: "user-1"},
		{Name: "timestamp", Value: "2024-01-02T03:04:05.000000Z"},
		{Name: "object_type", Value: "Workout"},
		{Name: "object_id", Value: id.String()},
	}, o.CoreAttributes())
}

func TestFormatTimestamp_SortsLexically(t *testing.T) {
	earlier := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	later := earlier.Add(1500 * time.Millisecond)

	assert.Less(t, FormatTimestamp(earlier), FormatTimestamp(later))
}

func TestParseTimestamp_AcceptsRFC3339(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-02T03:04:05+02:00")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC), ts)
}

func TestTag_FlagsDefaultToTrue(t *testing.T) {
	var tag Tag
	require.NoError(t, json.Unmarshal([]byte(`{"name":"heavy","color_hex":"#ff0000","for_sets":false}`), &tag))

	assert.False(t, tag.ForSets)
	assert.True(t, tag.ForExercises)
	assert.True(t, tag.ForWorkouts)
}

func TestHasAttribute(t *testing.T) {
	assert.True(t, HasAttribute(ObjectTypeSet, "exercise_join_id"))
	assert.True(t, HasAttribute(ObjectTypeTag, IDAttribute))
	assert.False(t, HasAttribute(ObjectTypeWorkout, "exercise_id"))
	assert.False(t, HasAttribute(ObjectType("Unknown"), IDAttribute))
}

func TestAttributeNames_ReturnsCopy(t *testing.T) {
	names := AttributeNames(ObjectTypeExerciseJoin)
	assert.Equal(t, []string{"workout_id", "exercise_id"}, names)

	names[0] = "changed"
	assert.Equal(t, "workout_id", AttributeNames(ObjectTypeExerciseJoin)[0])
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ObjectTypeTemplate, KindOf[Template]())
	assert.Equal(t, ObjectTypeExerciseJoin, KindOf[ExerciseJoin]())
}

func TestMarshalItem_RejectsDelimiterInUserID(t *testing.T) {
	w := &Workout{Object: Object{UserID: "tenant#42", ObjectType: ObjectTypeWorkout, Timestamp: time.Now()}}

	_, err := MarshalItem(w)

	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrorTypeInvalidPartition, pkgerrors.GetAppError(err).Type)
	assert.NoError(t, CheckUserID("user-1"))
}

func TestNormalizeTimestamp_MatchesSortKey(t *testing.T) {
	ts := time.Date(2024, 7, 6, 12, 0, 0, 123456789, time.FixedZone("CEST", 2*3600))

	normalized := NormalizeTimestamp(ts)

	assert.Equal(t, time.Date(2024, 7, 6, 10, 0, 0, 123456000, time.UTC), normalized)
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.Equal(t, normalized, parsed)
}
