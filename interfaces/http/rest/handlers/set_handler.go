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

// SetHandler serves /sets.
type SetHandler struct {
	*ObjectHandler[entities.Set, *entities.Set]
	relations *services.Relations
}

// NewSetHandler creates a new set handler
func NewSetHandler(
	sets *services.SetService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SetHandler {
	return &SetHandler{
		ObjectHandler: NewObjectHandler(sets, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /sets?workout={id}&exercise={id}. Either filter narrows
// the result to sets logged under the matching exercise joins.
func (h *SetHandler) List(w http.ResponseWriter, r *http.Request) {
	workoutID, err := queryID(r, "workout", "workout_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	exerciseID, err := queryID(r, "exercise", "exercise_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if workoutID == uuid.Nil && exerciseID == uuid.Nil {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	sets, err := h.relations.SetsFromIDs(r.Context(), user.ID, workoutID, exerciseID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sets)
}

// Delete handles DELETE /sets/{id}. Tag joins of the removed set go with it.
func (h *SetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.relations.DeleteSet)
}
