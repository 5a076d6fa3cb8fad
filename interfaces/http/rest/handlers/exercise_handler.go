package handlers

import (
	"net/http"

	"hard-backend/application/services"
	"hard-backend/domain/core/entities"
	"hard-backend/pkg/common"
	pkgerrors "hard-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExerciseHandler serves /exercises.
type ExerciseHandler struct {
	*ObjectHandler[entities.Exercise, *entities.Exercise]
	relations *services.Relations
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(
	exercises *services.ExerciseService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ExerciseHandler {
	return &ExerciseHandler{
		ObjectHandler: NewObjectHandler(exercises, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /exercises?workout={id}
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	workoutID, err := queryID(r, "workout", "workout_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if workoutID == uuid.Nil {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	exercises, err := h.relations.ExercisesFromWorkoutID(r.Context(), user.ID, workoutID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, exercises)
}

// Delete handles DELETE /exercises/{id}. Tag joins of the removed exercise go with it.
func (h *ExerciseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.relations.DeleteExercise)
}
