package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-api/internal/http/middleware"
	"storefront-api/internal/http/response"
	"storefront-api/internal/observability"
	"storefront-api/internal/security"
	"storefront-api/internal/service"
)

type AuthHandler struct {
	auth         *service.AuthService
	cookies      *security.CookieManager
	exposeErrors bool
}

func NewAuthHandler(auth *service.AuthService, cookies *security.CookieManager, exposeErrors bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, exposeErrors: exposeErrors}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authPayload struct {
	AccessToken string `json:"access_token"`
	User        any    `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	result, err := h.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			observability.RecordAuthRegister("validation_error")
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), map[string]string{"field": ve.Field})
		case errors.Is(err, service.ErrDuplicateEmail):
			observability.RecordAuthRegister("duplicate_email")
			response.Error(w, r, http.StatusBadRequest, "DUPLICATE_EMAIL", "email already registered", nil)
		default:
			observability.RecordAuthRegister("error")
			response.Error(w, r, http.StatusInternalServerError, "REGISTRATION_FAILED", "registration failed", h.details(err))
		}
		return
	}
	observability.RecordAuthRegister("success")
	observability.Audit(r, "auth.register", "user_id", result.User.ID)
	h.cookies.SetRefreshCookie(w, result.RefreshToken, h.auth.RefreshTTL())
	response.JSON(w, r, http.StatusCreated, authPayload{AccessToken: result.AccessToken, User: result.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.RecordAuthLogin("invalid_credentials")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil)
			return
		}
		observability.RecordAuthLogin("error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	observability.RecordAuthLogin("success")
	observability.Audit(r, "auth.login", "user_id", result.User.ID)
	h.cookies.SetRefreshCookie(w, result.RefreshToken, h.auth.RefreshTTL())
	response.JSON(w, r, http.StatusOK, authPayload{AccessToken: result.AccessToken, User: result.User})
}

// Refresh reads the token from the HTTP-only cookie, falling back to the
// JSON body for non-browser clients.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := security.GetCookie(r, security.RefreshTokenCookie)
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		observability.RecordAuthRefresh("missing_token")
		response.Error(w, r, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "missing refresh token", nil)
		return
	}
	result, err := h.auth.Refresh(token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			observability.RecordAuthRefresh("invalid_token")
			h.cookies.ClearRefreshCookie(w)
			response.Error(w, r, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token", nil)
			return
		}
		observability.RecordAuthRefresh("error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	observability.RecordAuthRefresh("success")
	observability.Audit(r, "auth.refresh", "user_id", result.User.ID)
	h.cookies.SetRefreshCookie(w, result.RefreshToken, h.auth.RefreshTTL())
	response.JSON(w, r, http.StatusOK, authPayload{AccessToken: result.AccessToken, User: result.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.auth.Logout(principal.ID); err != nil {
		observability.RecordAuthLogout("error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	observability.RecordAuthLogout("success")
	observability.Audit(r, "auth.logout", "user_id", principal.ID)
	h.cookies.ClearRefreshCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

// details exposes the underlying error outside production only.
func (h *AuthHandler) details(err error) any {
	if h.exposeErrors {
		return err.Error()
	}
	return nil
}
