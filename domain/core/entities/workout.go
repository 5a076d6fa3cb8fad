package entities

// Workout is a training session on a calendar date.
type Workout struct {
	Object
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes string `json:"notes,omitempty"`
}

func (*Workout) Kind() ObjectType { return ObjectTypeWorkout }

type workoutRow struct {
	keys
	Date  string `dynamodbav:"date"`
	Notes string `dynamodbav:"notes,omitempty"`
}

func (w *Workout) row() any {
	return workoutRow{keys: w.keys(), Date: w.Date, Notes: w.Notes}
}

func (w *Workout) load(item Item) error {
	var r workoutRow
	if err := decodeRow(item, &r, &r.keys, &w.Object); err != nil {
		return err
	}
	w.Date = r.Date
	w.Notes = r.Notes
	return nil
}
