package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"
)

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantErr string
	}{
		{
			name:  "valid workout",
			input: entities.Workout{Date: "2024-07-06"},
		},
		{
			name:    "workout date layout",
			input:   entities.Workout{Date: "06/07/2024"},
			wantErr: "date must match the layout 2006-01-02",
		},
		{
			name:    "exercise name required",
			input:   entities.Exercise{},
			wantErr: "name is required",
		},
		{
			name: "set enums",
			input: entities.Set{
				SetType:        "cooldown",
				Unit:           entities.WeightUnitKilograms,
				ExerciseJoinID: uuid.New(),
			},
			wantErr: "set_type must be one of: working warmup",
		},
		{
			name:    "negative reps",
			input:   entities.Set{SetType: entities.SetTypeWorking, Unit: entities.WeightUnitPounds, Reps: -1, ExerciseJoinID: uuid.New()},
			wantErr: "reps must be 0 or greater",
		},
		{
			name:    "nil join id",
			input:   entities.ExerciseJoin{WorkoutID: uuid.New()},
			wantErr: "exercise_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
