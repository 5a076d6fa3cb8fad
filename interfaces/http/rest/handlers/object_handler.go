package handlers

import (
	"context"
	"net/http"

	"hard-backend/application/services"
	"hard-backend/domain/core/entities"
	"hard-backend/pkg/auth"
	"hard-backend/pkg/common"
	pkgerrors "hard-backend/pkg/errors"
	"hard-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectHandler serves the CRUD routes of one collection.
type ObjectHandler[T any, PT entities.Record[T]] struct {
	service *services.Objects[T, PT]
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewObjectHandler creates a handler for the collection backed by service.
func NewObjectHandler[T any, PT entities.Record[T]](
	service *services.Objects[T, PT],
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ObjectHandler[T, PT] {
	return &ObjectHandler[T, PT]{
		service: service,
		errors:  errorHandler,
		logger:  logger,
	}
}

// List handles GET /{collection}
func (h *ObjectHandler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	objects, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, objects)
}

// Get handles GET /{collection}/{id}
func (h *ObjectHandler[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	object, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, object)
}

// Create handles POST /{collection}. Missing user_id and object_type are
// filled from the caller and the collection.
func (h *ObjectHandler[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	object, ok := h.decode(w, r, user)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), user.ID, object)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /{collection}/{id}. The path id replaces any object_id
// in the body; the body must carry the stored timestamp.
func (h *ObjectHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	object, ok := h.decode(w, r, user)
	if !ok {
		return
	}
	meta := object.Meta()
	meta.ObjectID = id
	if meta.Timestamp.IsZero() {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("timestamp is required"))
		return
	}

	updated, err := h.service.Update(r.Context(), user.ID, object)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /{collection}/{id} and returns the removed object.
func (h *ObjectHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWith(w, r, h.service.Delete)
}

// deleteWith serves a delete through remove, which may cascade.
func (h *ObjectHandler[T, PT]) deleteWith(w http.ResponseWriter, r *http.Request, remove func(context.Context, string, uuid.UUID) (PT, error)) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := remove(r.Context(), user.ID, id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, deleted)
}

func (h *ObjectHandler[T, PT]) decode(w http.ResponseWriter, r *http.Request, user *auth.UserIdentity) (PT, bool) {
	object := PT(new(T))
	if err := common.ParseJSONBody(w, r, object, common.MaxBodyBytes); err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}

	meta := object.Meta()
	if meta.UserID == "" {
		meta.UserID = user.ID
	}
	if meta.ObjectType == "" {
		meta.ObjectType = h.service.Kind()
	}

	if err := utils.ValidateStruct(object); err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	return object, true
}

func (h *ObjectHandler[T, PT]) user(w http.ResponseWriter, r *http.Request) (*auth.UserIdentity, bool) {
	return currentUser(w, r, h.errors)
}

func (h *ObjectHandler[T, PT]) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := common.ParseID("id", chi.URLParam(r, "id"))
	if err == nil && id == uuid.Nil {
		err = pkgerrors.NewValidationError("id is required")
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(w http.ResponseWriter, r *http.Request, errorHandler *pkgerrors.ErrorHandler) (*auth.UserIdentity, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Unauthorized"))
		return nil, false
	}
	return user, true
}

// queryID parses the first non-empty query parameter among names.
func queryID(r *http.Request, names ...string) (uuid.UUID, error) {
	query := r.URL.Query()
	for _, name := range names {
		if value := query.Get(name); value != "" {
			return common.ParseID(name, value)
		}
	}
	return uuid.Nil, nil
}
