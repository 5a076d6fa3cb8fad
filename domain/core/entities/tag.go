package entities

import "encoding/json"

// Tag is a user defined label that can be attached to sets, exercises and
// workouts through TagJoins.
type Tag struct {
	Object
	Name         string `json:"name" validate:"required"`
	ColorHex     string `json:"color_hex" validate:"required"`
	ForSets      bool   `json:"for_sets"`
	ForExercises bool   `json:"for_exercises"`
	ForWorkouts  bool   `json:"for_workouts"`
}

func (*Tag) Kind() ObjectType { return ObjectTypeTag }

// UnmarshalJSON defaults the scope flags to true when omitted.
func (t *Tag) UnmarshalJSON(data []byte) error {
	type plain Tag
	p := plain{ForSets: true, ForExercises: true, ForWorkouts: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Tag(p)
	return nil
}

type tagRow struct {
	keys
	Name         string `dynamodbav:"name"`
	ColorHex     string `dynamodbav:"color_hex"`
	ForSets      bool   `dynamodbav:"for_sets"`
	ForExercises bool   `dynamodbav:"for_exercises"`
	ForWorkouts  bool   `dynamodbav:"for_workouts"`
}

func (t *Tag) row() any {
	return tagRow{
		keys:         t.keys(),
		Name:         t.Name,
		ColorHex:     t.ColorHex,
		ForSets:      t.ForSets,
		ForExercises: t.ForExercises,
		ForWorkouts:  t.ForWorkouts,
	}
}

func (t *Tag) load(item Item) error {
	var r tagRow
	if err := decodeRow(item, &r, &r.keys, &t.Object); err != nil {
		return err
	}
	t.Name = r.Name
	t.ColorHex = r.ColorHex
	t.ForSets = r.ForSets
	t.ForExercises = r.ForExercises
	t.ForWorkouts = r.ForWorkouts
	return nil
}
