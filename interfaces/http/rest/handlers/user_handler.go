package handlers

import (
	"net/http"

	"hard-backend/pkg/common"
	pkgerrors "hard-backend/pkg/errors"
)

// UserHandler serves the caller's own identity.
type UserHandler struct {
	errors *pkgerrors.ErrorHandler
}

// NewUserHandler creates a new user handler
func NewUserHandler(errorHandler *pkgerrors.ErrorHandler) *UserHandler {
	return &UserHandler{errors: errorHandler}
}

// Me handles GET /api/user
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.errors)
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}
