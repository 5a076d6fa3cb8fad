package handlers

import (
	"net/http"
	"time"

	"hard-backend/application/services"
	"hard-backend/domain/core/entities"
	"hard-backend/pkg/common"
	pkgerrors "hard-backend/pkg/errors"

	"go.uber.org/zap"
)

// WorkoutHandler serves /workouts. Deleting a workout cascades to its
// exercise joins and their sets.
type WorkoutHandler struct {
	*ObjectHandler[entities.Workout, *entities.Workout]
	relations *services.Relations
}

// NewWorkoutHandler creates a new workout handler
func NewWorkoutHandler(
	workouts *services.WorkoutService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *WorkoutHandler {
	return &WorkoutHandler{
		ObjectHandler: NewObjectHandler(workouts, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /workouts?date=YYYY-MM-DD
func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("date must match the layout 2006-01-02"))
		return
	}

	workouts, err := h.relations.WorkoutsOnDate(r.Context(), user.ID, date)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, workouts)
}

// Delete handles DELETE /workouts/{id}
func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.relations.DeleteWorkout)
}
