package entities

import "github.com/google/uuid"

// ExerciseJoin records that an exercise was performed in a workout.
type ExerciseJoin struct {
	Object
	WorkoutID  uuid.UUID `json:"workout_id" validate:"required"`
	ExerciseID uuid.UUID `json:"exercise_id" validate:"required"`
}

func (*ExerciseJoin) Kind() ObjectType { return ObjectTypeExerciseJoin }

type exerciseJoinRow struct {
	keys
	WorkoutID  string `dynamodbav:"workout_id"`
	ExerciseID string `dynamodbav:"exercise_id"`
}

func (j *ExerciseJoin) row() any {
	return exerciseJoinRow{
		keys:       j.keys(),
		WorkoutID:  idString(j.WorkoutID),
		ExerciseID: idString(j.ExerciseID),
	}
}

func (j *ExerciseJoin) load(item Item) error {
	var r exerciseJoinRow
	if err := decodeRow(item, &r, &r.keys, &j.Object); err != nil {
		return err
	}
	workoutID, err := parseID("workout_id", r.WorkoutID)
	if err != nil {
		return err
	}
	exerciseID, err := parseID("exercise_id", r.ExerciseID)
	if err != nil {
		return err
	}
	j.WorkoutID = workoutID
	j.ExerciseID = exerciseID
	return nil
}

// TagJoin attaches a Tag to any taggable object.
type TagJoin struct {
	Object
	TargetID         uuid.UUID  `json:"target_id" validate:"required"`
	TagID            uuid.UUID  `json:"tag_id" validate:"required"`
	TargetObjectType ObjectType `json:"target_object_type" validate:"required,oneof=Workout Exercise Set"`
}

func (*TagJoin) Kind() ObjectType { return ObjectTypeTagJoin }

type tagJoinRow struct {
	keys
	TargetID         string `dynamodbav:"target_id"`
	TagID            string `dynamodbav:"tag_id"`
	TargetObjectType string `dynamodbav:"target_object_type"`
}

func (j *TagJoin) row() any {
	return tagJoinRow{
		keys:             j.keys(),
		TargetID:         idString(j.TargetID),
		TagID:            idString(j.TagID),
		TargetObjectType: string(j.TargetObjectType),
	}
}

func (j *TagJoin) load(item Item) error {
	var r tagJoinRow
	if err := decodeRow(item, &r, &r.keys, &j.Object); err != nil {
		return err
	}
	targetID, err := parseID("target_id", r.TargetID)
	if err != nil {
		return err
	}
	tagID, err := parseID("tag_id", r.TagID)
	if err != nil {
		return err
	}
	j.TargetID = targetID
	j.TagID = tagID
	j.TargetObjectType = ObjectType(r.TargetObjectType)
	return nil
}
