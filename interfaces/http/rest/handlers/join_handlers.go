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

// ExerciseJoinHandler serves /exercise-joins. Deleting a join also deletes
// the sets logged under it.
type ExerciseJoinHandler struct {
	*ObjectHandler[entities.ExerciseJoin, *entities.ExerciseJoin]
	relations *services.Relations
}

// NewExerciseJoinHandler creates a new exercise join handler
func NewExerciseJoinHandler(
	joins *services.ExerciseJoinService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ExerciseJoinHandler {
	return &ExerciseJoinHandler{
		ObjectHandler: NewObjectHandler(joins, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /exercise-joins?exercise={id}&workout={id}. A filter that
// matches nothing is a 404.
func (h *ExerciseJoinHandler) List(w http.ResponseWriter, r *http.Request) {
	exerciseID, workoutID, ok := h.pair(w, r)
	if !ok {
		return
	}
	if exerciseID == uuid.Nil && workoutID == uuid.Nil {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	joins, err := h.relations.ExerciseJoinFilter(r.Context(), user.ID, exerciseID, workoutID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if len(joins) == 0 {
		h.errors.Handle(w, r, pkgerrors.NewItemNotFoundError("No joins found"))
		return
	}
	common.RespondJSON(w, http.StatusOK, joins)
}

// Delete handles DELETE /exercise-joins/{id}
func (h *ExerciseJoinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.relations.DeleteExerciseJoin)
}

// DeleteByPair handles DELETE /exercise-joins?exercise={id}&workout={id}
func (h *ExerciseJoinHandler) DeleteByPair(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	exerciseID, workoutID, ok := h.pair(w, r)
	if !ok {
		return
	}

	deleted, err := h.relations.DeleteExerciseJoinByPair(r.Context(), user.ID, exerciseID, workoutID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, deleted)
}

func (h *ExerciseJoinHandler) pair(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	exerciseID, err := queryID(r, "exercise", "exercise_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	workoutID, err := queryID(r, "workout", "workout_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	return exerciseID, workoutID, true
}

// TagJoinHandler serves /tag-joins.
type TagJoinHandler struct {
	*ObjectHandler[entities.TagJoin, *entities.TagJoin]
	relations *services.Relations
}

// NewTagJoinHandler creates a new tag join handler
func NewTagJoinHandler(
	joins *services.TagJoinService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *TagJoinHandler {
	return &TagJoinHandler{
		ObjectHandler: NewObjectHandler(joins, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /tag-joins?tag={id} and GET /tag-joins?target={id}. A
// filtered listing returns the matching join ids.
func (h *TagJoinHandler) List(w http.ResponseWriter, r *http.Request) {
	tagID, err := queryID(r, "tag", "tag_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	targetID, err := queryID(r, "target", "target_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if tagID == uuid.Nil && targetID == uuid.Nil {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	ids, err := h.relations.TagJoinFilter(r.Context(), user.ID, tagID, targetID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ids)
}
