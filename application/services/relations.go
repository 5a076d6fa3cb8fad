package services

import (
	"context"
	"fmt"

	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"
	"hard-backend/pkg/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type (
	WorkoutService      = Objects[entities.Workout, *entities.Workout]
	ExerciseService     = Objects[entities.Exercise, *entities.Exercise]
	SetService          = Objects[entities.Set, *entities.Set]
	TagService          = Objects[entities.Tag, *entities.Tag]
	ExerciseJoinService = Objects[entities.ExerciseJoin, *entities.ExerciseJoin]
	TagJoinService      = Objects[entities.TagJoin, *entities.TagJoin]
	TemplateService     = Objects[entities.Template, *entities.Template]
)

// Relations resolves objects through their joins and runs the cascading
// deletes. Cascades are a sequence of independent deletes; a failure part way
// through leaves the remaining children in place.
type Relations struct {
	workouts      *WorkoutService
	exercises     *ExerciseService
	sets          *SetService
	tags          *TagService
	exerciseJoins *ExerciseJoinService
	tagJoins      *TagJoinService
	tracer        *observability.Tracer
	logger        *zap.Logger
}

// NewRelations creates a new Relations service
func NewRelations(
	workouts *WorkoutService,
	exercises *ExerciseService,
	sets *SetService,
	tags *TagService,
	exerciseJoins *ExerciseJoinService,
	tagJoins *TagJoinService,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Relations {
	return &Relations{
		workouts:      workouts,
		exercises:     exercises,
		sets:          sets,
		tags:          tags,
		exerciseJoins: exerciseJoins,
		tagJoins:      tagJoins,
		tracer:        tracer,
		logger:        logger,
	}
}

// ExerciseJoinFilter returns the user's exercise joins matching every id
// supplied. At least one of exerciseID and workoutID is required.
func (r *Relations) ExerciseJoinFilter(ctx context.Context, userID string, exerciseID, workoutID uuid.UUID) ([]*entities.ExerciseJoin, error) {
	if exerciseID == uuid.Nil && workoutID == uuid.Nil {
		return nil, pkgerrors.NewInvalidUsageError("at least one of `exercise_id` or `workout_id` is required")
	}

	filter := make(map[string][]string, 2)
	if exerciseID != uuid.Nil {
		filter["exercise_id"] = []string{exerciseID.String()}
	}
	if workoutID != uuid.Nil {
		filter["workout_id"] = []string{workoutID.String()}
	}
	return r.exerciseJoins.Filter(ctx, userID, filter)
}

// TagJoinFilter returns the ids of the user's tag joins for exactly one of
// tagID or targetID.
func (r *Relations) TagJoinFilter(ctx context.Context, userID string, tagID, targetID uuid.UUID) ([]uuid.UUID, error) {
	joins, err := r.tagJoinsFor(ctx, userID, tagID, targetID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(joins))
	for _, join := range joins {
		if join.ObjectID == uuid.Nil {
			return nil, pkgerrors.NewDataIntegrityError(
				fmt.Sprintf("`%s` row without `object_id` in partition '%s'", entities.ObjectTypeTagJoin, join.Partition()))
		}
		ids = append(ids, join.ObjectID)
	}
	return ids, nil
}

func (r *Relations) tagJoinsFor(ctx context.Context, userID string, tagID, targetID uuid.UUID) ([]*entities.TagJoin, error) {
	hasTag := tagID != uuid.Nil
	hasTarget := targetID != uuid.Nil
	if hasTag == hasTarget {
		return nil, pkgerrors.NewInvalidUsageError("exactly one of `tag_id` or `target_id` is required")
	}

	filter := map[string][]string{}
	if hasTag {
		filter["tag_id"] = []string{tagID.String()}
	} else {
		filter["target_id"] = []string{targetID.String()}
	}
	return r.tagJoins.Filter(ctx, userID, filter)
}

// ExercisesFromWorkoutID returns the exercises performed in a workout.
func (r *Relations) ExercisesFromWorkoutID(ctx context.Context, userID string, workoutID uuid.UUID) ([]*entities.Exercise, error) {
	joins, err := r.ExerciseJoinFilter(ctx, userID, uuid.Nil, workoutID)
	if err != nil {
		return nil, err
	}

	exerciseIDs := make([]string, 0, len(joins))
	seen := make(map[uuid.UUID]bool, len(joins))
	for _, join := range joins {
		if !seen[join.ExerciseID] {
			seen[join.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, join.ExerciseID.String())
		}
	}
	return r.exercises.BatchGet(ctx, userID, entities.IDAttribute, exerciseIDs)
}

// SetsFromIDs returns the sets attached to the exercise joins matching
// workoutID and exerciseID.
func (r *Relations) SetsFromIDs(ctx context.Context, userID string, workoutID, exerciseID uuid.UUID) ([]*entities.Set, error) {
	joins, err := r.ExerciseJoinFilter(ctx, userID, exerciseID, workoutID)
	if err != nil {
		return nil, err
	}
	return r.sets.BatchGet(ctx, userID, "exercise_join_id", objectIDs(joins))
}

// TagsFromTargetID returns the tags attached to targetID.
func (r *Relations) TagsFromTargetID(ctx context.Context, userID string, targetID uuid.UUID) ([]*entities.Tag, error) {
	joins, err := r.tagJoinsFor(ctx, userID, uuid.Nil, targetID)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]string, 0, len(joins))
	for _, join := range joins {
		tagIDs = append(tagIDs, join.TagID.String())
	}
	return r.tags.BatchGet(ctx, userID, entities.IDAttribute, tagIDs)
}

// WorkoutsOnDate returns the user's workouts on a YYYY-MM-DD date.
func (r *Relations) WorkoutsOnDate(ctx context.Context, userID, date string) ([]*entities.Workout, error) {
	return r.workouts.Filter(ctx, userID, map[string][]string{"date": {date}})
}

// DeleteWorkout deletes a workout with its exercise joins, their sets and
// the tag joins of the workout and those sets. Children go first so no set
// is left pointing at a removed join.
func (r *Relations) DeleteWorkout(ctx context.Context, userID string, workoutID uuid.UUID) (*entities.Workout, error) {
	var deleted *entities.Workout
	err := r.tracer.TraceFunction(ctx, "DeleteWorkout", func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "workoutID", workoutID.String())
		workout, err := r.workouts.Get(ctx, userID, workoutID)
		if err != nil {
			if pkgerrors.IsItemNotFound(err) {
				return r.workouts.notFound(workoutID, "Cannot Delete")
			}
			return err
		}

		joins, err := r.exerciseJoins.BatchGet(ctx, userID, "workout_id", []string{workoutID.String()})
		if err != nil {
			return err
		}
		sets, err := r.sets.BatchGet(ctx, userID, "exercise_join_id", objectIDs(joins))
		if err != nil {
			return err
		}

		targets := append(setIDs(sets), workoutID.String())
		if err := r.deleteTagJoinsOf(ctx, userID, targets); err != nil {
			return err
		}
		for _, set := range sets {
			if err := r.sets.remove(ctx, set); err != nil {
				return err
			}
		}
		for _, join := range joins {
			if err := r.exerciseJoins.remove(ctx, join); err != nil {
				return err
			}
		}
		if err := r.workouts.remove(ctx, workout); err != nil {
			return err
		}

		r.logger.Info("Workout deleted with dependents",
			zap.String("workoutID", workoutID.String()),
			zap.Int("exerciseJoins", len(joins)),
			zap.Int("sets", len(sets)),
		)
		deleted = workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteExerciseJoin deletes an exercise join and then its sets.
func (r *Relations) DeleteExerciseJoin(ctx context.Context, userID string, joinID uuid.UUID) (*entities.ExerciseJoin, error) {
	var deleted *entities.ExerciseJoin
	err := r.tracer.TraceFunction(ctx, "DeleteExerciseJoin", func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "exerciseJoinID", joinID.String())
		join, err := r.exerciseJoins.Delete(ctx, userID, joinID)
		if err != nil {
			return err
		}
		if err := r.deleteSetsOf(ctx, userID, join); err != nil {
			return err
		}
		deleted = join
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteExerciseJoinByPair deletes the single join between an exercise and a
// workout, then its sets.
func (r *Relations) DeleteExerciseJoinByPair(ctx context.Context, userID string, exerciseID, workoutID uuid.UUID) (*entities.ExerciseJoin, error) {
	if exerciseID == uuid.Nil || workoutID == uuid.Nil {
		return nil, pkgerrors.NewInvalidUsageError("both `exercise` and `workout` are required")
	}

	joins, err := r.ExerciseJoinFilter(ctx, userID, exerciseID, workoutID)
	if err != nil {
		return nil, err
	}
	switch len(joins) {
	case 0:
		return nil, pkgerrors.NewItemNotFoundError("No joins found")
	case 1:
		return r.DeleteExerciseJoin(ctx, userID, joins[0].ObjectID)
	default:
		return nil, pkgerrors.NewMultipleJoinsFoundError("Multiple joins found")
	}
}

// DeleteTag deletes a tag and every tag join pointing at it.
func (r *Relations) DeleteTag(ctx context.Context, userID string, tagID uuid.UUID) (*entities.Tag, error) {
	var deleted *entities.Tag
	err := r.tracer.TraceFunction(ctx, "DeleteTag", func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "tagID", tagID.String())
		tag, err := r.tags.Delete(ctx, userID, tagID)
		if err != nil {
			return err
		}
		joins, err := r.tagJoinsFor(ctx, userID, tagID, uuid.Nil)
		if err != nil {
			return err
		}
		if err := removeAll(ctx, r.tagJoins, joins); err != nil {
			return err
		}
		deleted = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteExercise deletes an exercise and its tag joins. Exercise joins
// referencing it are kept so past workouts still list their sets.
func (r *Relations) DeleteExercise(ctx context.Context, userID string, exerciseID uuid.UUID) (*entities.Exercise, error) {
	return deleteTagged(ctx, r, r.exercises, userID, exerciseID)
}

// DeleteSet deletes a set and its tag joins.
func (r *Relations) DeleteSet(ctx context.Context, userID string, setID uuid.UUID) (*entities.Set, error) {
	return deleteTagged(ctx, r, r.sets, userID, setID)
}

func deleteTagged[T any, PT entities.Record[T]](ctx context.Context, r *Relations, objects *Objects[T, PT], userID string, id uuid.UUID) (PT, error) {
	var deleted PT
	err := r.tracer.TraceFunction(ctx, "Delete"+objects.Kind().String(), func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "objectID", id.String())
		e, err := objects.Delete(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := r.deleteTagJoinsOf(ctx, userID, []string{id.String()}); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// deleteTagJoinsOf removes the user's tag joins whose target is one of
// targetIDs.
func (r *Relations) deleteTagJoinsOf(ctx context.Context, userID string, targetIDs []string) error {
	joins, err := r.tagJoins.BatchGet(ctx, userID, "target_id", targetIDs)
	if err != nil {
		return err
	}
	return removeAll(ctx, r.tagJoins, joins)
}

func removeAll[T any, PT entities.Record[T]](ctx context.Context, objects *Objects[T, PT], rows []PT) error {
	for _, row := range rows {
		if err := objects.remove(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relations) deleteSetsOf(ctx context.Context, userID string, join *entities.ExerciseJoin) error {
	sets, err := r.sets.BatchGet(ctx, userID, "exercise_join_id", []string{join.ObjectID.String()})
	if err != nil {
		return err
	}
	if err := r.deleteTagJoinsOf(ctx, userID, setIDs(sets)); err != nil {
		return err
	}
	return removeAll(ctx, r.sets, sets)
}

func objectIDs(joins []*entities.ExerciseJoin) []string {
	ids := make([]string, 0, len(joins))
	for _, join := range joins {
		ids = append(ids, join.ObjectID.String())
	}
	return ids
}

func setIDs(sets []*entities.Set) []string {
	ids := make([]string, 0, len(sets))
	for _, set := range sets {
		ids = append(ids, set.ObjectID.String())
	}
	return ids
}
