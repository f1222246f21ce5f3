package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/domain"
)

func requestWithPrincipal(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	if role == "" {
		return r
	}
	p := &Principal{ID: 1, Email: "ada@example.com", Role: role}
	return r.WithContext(context.WithValue(r.Context(), principalContextKey, p))
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", domain.RoleAdmin, http.StatusOK},
		{"customer forbidden", domain.RoleCustomer, http.StatusForbidden},
		{"no principal unauthorized", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestWithPrincipal(tc.role))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRoleErrorDetails(t *testing.T) {
	h := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithPrincipal(domain.RoleCustomer))

	if code := errorCode(t, rec); code != "FORBIDDEN" {
		t.Fatalf("code = %q", code)
	}
}
