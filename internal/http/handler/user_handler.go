package handler

import (
	"net/http"

	"storefront-api/internal/http/middleware"
	"storefront-api/internal/http/response"
	"storefront-api/internal/service"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	user, err := h.auth.GetUserByID(principal.ID)
	if err != nil {
		response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}
