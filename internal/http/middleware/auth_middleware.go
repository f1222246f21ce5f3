package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront-api/internal/domain"
	"storefront-api/internal/http/response"
	"storefront-api/internal/observability"
	"storefront-api/internal/security"
	"storefront-api/internal/service"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the authenticated identity attached to the request context
// after the access token has been verified and the user confirmed to exist.
type Principal struct {
	ID    uint
	Email string
	Role  string
}

// Authenticator is the slice of AuthService the gate needs.
type Authenticator interface {
	VerifyAccessToken(raw string) (*security.Claims, error)
	GetUserByID(id uint) (*domain.User, error)
}

// Auth is the inbound gate: extract the bearer token, verify it, then load
// the user by the verified subject. The user lookup is mandatory: access
// tokens are not invalidated when a user is deleted, so a valid token may
// name a subject that no longer exists.
func Auth(auth Authenticator, exposeErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := auth.VerifyAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				var details any
				if exposeErrors {
					details = err.Error()
				}
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", details)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			user, err := auth.GetUserByID(userID)
			if err != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					observability.RecordAccessTokenValidation(r.Context(), "user_gone")
					response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
					return
				}
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			principal := &Principal{ID: user.ID, Email: user.Email, Role: user.Role}
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
