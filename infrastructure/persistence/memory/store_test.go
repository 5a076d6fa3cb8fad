package memory

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hard-backend/application/ports"
	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"
)

func row(partition, sortKey, id string, attrs map[string]string) entities.Item {
	item := entities.Item{
		entities.PartitionAttribute: &types.AttributeValueMemberS{Value: partition},
		entities.SortAttribute:      &types.AttributeValueMemberS{Value: sortKey},
		entities.IDAttribute:        &types.AttributeValueMemberS{Value: id},
	}
	for k, v := range attrs {
		item[k] = &types.AttributeValueMemberS{Value: v}
	}
	return item
}

func seeded(t *testing.T) *Store {
	t.Helper()
	store := NewStore(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, row("u1#ExerciseJoin", "2024-01-02T00:00:00.000000Z", "j2", map[string]string{"workout_id": "w1", "exercise_id": "e2"})))
	require.NoError(t, store.Put(ctx, row("u1#ExerciseJoin", "2024-01-01T00:00:00.000000Z", "j1", map[string]string{"workout_id": "w1", "exercise_id": "e1"})))
	require.NoError(t, store.Put(ctx, row("u1#ExerciseJoin", "2024-01-03T00:00:00.000000Z", "j3", map[string]string{"workout_id": "w2", "exercise_id": "e1"})))
	require.NoError(t, store.Put(ctx, row("u2#ExerciseJoin", "2024-01-01T00:00:00.000000Z", "j4", map[string]string{"workout_id": "w1", "exercise_id": "e1"})))
	return store
}

func ids(items []entities.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = attributeString(item[entities.IDAttribute])
	}
	return out
}

func TestStore_Query_PartitionOrderedBySortKey(t *testing.T) {
	store := seeded(t)

	items, err := store.Query(context.Background(), ports.Query{Partition: "u1#ExerciseJoin"})

	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2", "j3"}, ids(items))
}

func TestStore_Query_FilterSemantics(t *testing.T) {
	store := seeded(t)

	tests := []struct {
		name   string
		filter map[string][]string
		want   []string
	}{
		{"single value", map[string][]string{"workout_id": {"w1"}}, []string{"j1", "j2"}},
		{"in list", map[string][]string{"exercise_id": {"e1", "e2"}}, []string{"j1", "j2", "j3"}},
		{"and across attributes", map[string][]string{"workout_id": {"w1"}, "exercise_id": {"e1"}}, []string{"j1"}},
		{"missing attribute never matches", map[string][]string{"tag_id": {"t1"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := store.Query(context.Background(), ports.Query{Partition: "u1#ExerciseJoin", Filter: tt.filter})

			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(items))
		})
	}
}

func TestStore_Query_ItemIndexSpansPartitions(t *testing.T) {
	store := seeded(t)

	items, err := store.Query(context.Background(), ports.Query{Partition: "j4", Index: ports.ItemIndex})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u2#ExerciseJoin"}, items[0][entities.PartitionAttribute])
}

func TestStore_PutReplacesAndDeleteRemoves(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	replacement := row("u1#ExerciseJoin", "2024-01-01T00:00:00.000000Z", "j1", map[string]string{"workout_id": "w9", "exercise_id": "e1"})

	require.NoError(t, store.Put(ctx, replacement))
	assert.Equal(t, 4, store.Len())

	require.NoError(t, store.Delete(ctx, replacement))
	assert.Equal(t, 3, store.Len())
}

func TestStore_BatchGet(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	t.Run("filters by attribute", func(t *testing.T) {
		items, err := store.BatchGet(ctx, "u1", entities.ObjectTypeExerciseJoin, "workout_id", []string{"w2"})

		require.NoError(t, err)
		assert.Equal(t, []string{"j3"}, ids(items))
	})

	t.Run("empty matches", func(t *testing.T) {
		items, err := store.BatchGet(ctx, "u1", entities.ObjectTypeExerciseJoin, "workout_id", nil)

		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := store.BatchGet(ctx, "u1", entities.ObjectTypeExerciseJoin, "tag_id", []string{"t1"})

		assert.True(t, pkgerrors.IsInvalidUsage(err))
	})
}
