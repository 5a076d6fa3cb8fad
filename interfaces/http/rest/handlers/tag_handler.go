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

// TagHandler serves /tags.
type TagHandler struct {
	*ObjectHandler[entities.Tag, *entities.Tag]
	relations *services.Relations
}

// NewTagHandler creates a new tag handler
func NewTagHandler(
	tags *services.TagService,
	relations *services.Relations,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *TagHandler {
	return &TagHandler{
		ObjectHandler: NewObjectHandler(tags, errorHandler, logger),
		relations:     relations,
	}
}

// List handles GET /tags?target={id}
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	targetID, err := queryID(r, "target", "target_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if targetID == uuid.Nil {
		h.ObjectHandler.List(w, r)
		return
	}

	user, ok := h.user(w, r)
	if !ok {
		return
	}
	tags, err := h.relations.TagsFromTargetID(r.Context(), user.ID, targetID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tags)
}

// Delete handles DELETE /tags/{id}. Tag joins of the removed tag go with it.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.relations.DeleteTag)
}
