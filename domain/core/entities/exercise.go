package entities

// Exercise is a named movement that can be performed in many workouts.
type Exercise struct {
	Object
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (*Exercise) Kind() ObjectType { return ObjectTypeExercise }

type exerciseRow struct {
	keys
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
}

func (e *Exercise) row() any {
	return exerciseRow{keys: e.keys(), Name: e.Name, Description: e.Description}
}

func (e *Exercise) load(item Item) error {
	var r exerciseRow
	if err := decodeRow(item, &r, &r.keys, &e.Object); err != nil {
		return err
	}
	e.Name = r.Name
	e.Description = r.Description
	return nil
}
