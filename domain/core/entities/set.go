package entities

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "hard-backend/pkg/errors"
)

// SetType distinguishes warmup sets from working sets.
type SetType string

const (
	SetTypeWorking SetType = "working"
	SetTypeWarmup  SetType = "warmup"
)

// WeightUnit is the unit a set's weight is recorded in.
type WeightUnit string

const (
	WeightUnitKilograms WeightUnit = "kg"
	WeightUnitPounds    WeightUnit = "lbs"
)

// Set is one performance of an exercise within a workout, attached to the
// ExerciseJoin that pairs them.
type Set struct {
	Object
	SetType        SetType    `json:"set_type" validate:"required,oneof=working warmup"`
	Weight         float64    `json:"weight" validate:"gte=0"`
	Unit           WeightUnit `json:"unit" validate:"required,oneof=kg lbs"`
	Reps           float64    `json:"reps" validate:"gte=0"`
	Notes          string     `json:"notes"`
	ExerciseJoinID uuid.UUID  `json:"exercise_join_id" validate:"required"`
}

func (*Set) Kind() ObjectType { return ObjectTypeSet }

type setRow struct {
	keys
	SetType        string  `dynamodbav:"set_type"`
	Weight         float64 `dynamodbav:"weight"`
	Unit           string  `dynamodbav:"unit"`
	Reps           float64 `dynamodbav:"reps"`
	Notes          string  `dynamodbav:"notes"`
	ExerciseJoinID string  `dynamodbav:"exercise_join_id"`
}

func (s *Set) row() any {
	return setRow{
		keys:           s.keys(),
		SetType:        string(s.SetType),
		Weight:         s.Weight,
		Unit:           string(s.Unit),
		Reps:           s.Reps,
		Notes:          s.Notes,
		ExerciseJoinID: idString(s.ExerciseJoinID),
	}
}

func (s *Set) load(item Item) error {
	var r setRow
	if err := decodeRow(item, &r, &r.keys, &s.Object); err != nil {
		return err
	}
	joinID, err := parseID("exercise_join_id", r.ExerciseJoinID)
	if err != nil {
		return err
	}
	s.SetType = SetType(r.SetType)
	s.Weight = r.Weight
	s.Unit = WeightUnit(r.Unit)
	s.Reps = r.Reps
	s.Notes = r.Notes
	s.ExerciseJoinID = joinID
	return nil
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseID(attribute, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, pkgerrors.NewDataIntegrityError(
			fmt.Sprintf("malformed `%s`: '%s'", attribute, s)).WithCause(err)
	}
	return id, nil
}
