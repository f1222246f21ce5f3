package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/security"
	"storefront-api/internal/service"
)

type fakeAuthenticator struct {
	codec *security.TokenCodec
	users map[uint]*domain.User
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		codec: security.NewTokenCodec(
			"storefront-api-test",
			"access-secret-0123456789-0123456789-ab",
			"refresh-secret-0123456789-0123456789-a",
			15*time.Minute,
			time.Hour,
		),
		users: map[uint]*domain.User{},
	}
}

func (f *fakeAuthenticator) VerifyAccessToken(raw string) (*security.Claims, error) {
	return f.codec.Verify(raw, security.TokenKindAccess)
}

func (f *fakeAuthenticator) GetUserByID(id uint) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeAuthenticator) addUser(id uint, role string) string {
	u := &domain.User{ID: id, Email: "ada@example.com", Name: "Ada", Role: role}
	f.users[id] = u
	token, err := f.codec.Sign(id, u.Email, security.TokenKindAccess)
	if err != nil {
		panic(err)
	}
	return token
}

func gatedHandler(auth *fakeAuthenticator) (http.Handler, *Principal) {
	var seen Principal
	h := Auth(auth, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFromContext(r.Context()); ok {
			seen = *p
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func doGated(t *testing.T, h http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestAuthAttachesPrincipal(t *testing.T) {
	auth := newFakeAuthenticator()
	token := auth.addUser(7, domain.RoleCustomer)
	h, seen := gatedHandler(auth)

	rec := doGated(t, h, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if seen.ID != 7 || seen.Email != "ada@example.com" || seen.Role != domain.RoleCustomer {
		t.Fatalf("principal = %+v", seen)
	}
}

func TestAuthMissingToken(t *testing.T) {
	auth := newFakeAuthenticator()
	h, _ := gatedHandler(auth)

	for name, header := range map[string]string{
		"no header":    "",
		"wrong scheme": "Basic abc",
		"empty bearer": "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			rec := doGated(t, h, header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Fatalf("code = %q", code)
			}
		})
	}
}

func TestAuthInvalidToken(t *testing.T) {
	auth := newFakeAuthenticator()
	h, _ := gatedHandler(auth)

	rec := doGated(t, h, "Bearer not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	auth := newFakeAuthenticator()
	auth.addUser(7, domain.RoleCustomer)
	refresh, err := auth.codec.Sign(7, "ada@example.com", security.TokenKindRefresh)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	h, _ := gatedHandler(auth)

	rec := doGated(t, h, "Bearer "+refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthDeletedUser(t *testing.T) {
	auth := newFakeAuthenticator()
	token := auth.addUser(7, domain.RoleCustomer)
	delete(auth.users, 7)
	h, _ := gatedHandler(auth)

	rec := doGated(t, h, "Bearer "+token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "USER_NOT_FOUND" {
		t.Fatalf("code = %q", code)
	}
}
