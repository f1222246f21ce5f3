package security

import (
	"errors"
	"testing"
	"time"
)

func newCodec() *TokenCodec {
	return NewTokenCodec(
		"storefront-api-test",
		"access-secret-0123456789-0123456789-ab",
		"refresh-secret-0123456789-0123456789-a",
		15*time.Minute,
		time.Hour,
	)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := newCodec()
	for _, kind := range []string{TokenKindAccess, TokenKindRefresh} {
		t.Run(kind, func(t *testing.T) {
			raw, err := codec.Sign(42, "ada@example.com", kind)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			claims, err := codec.Verify(raw, kind)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			id, err := claims.UserID()
			if err != nil {
				t.Fatalf("user id: %v", err)
			}
			if id != 42 {
				t.Fatalf("user id = %d, want 42", id)
			}
			if claims.SubjectEmail != "ada@example.com" {
				t.Fatalf("subject email = %q", claims.SubjectEmail)
			}
			if claims.TokenKind != kind {
				t.Fatalf("token kind = %q, want %q", claims.TokenKind, kind)
			}
		})
	}
}

func TestVerifyRejectsCrossKind(t *testing.T) {
	codec := newCodec()
	access, err := codec.Sign(42, "ada@example.com", TokenKindAccess)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	refresh, err := codec.Sign(42, "ada@example.com", TokenKindRefresh)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	// the kinds use different secrets, so the cross check fails at the
	// signature and must not leak which part was wrong
	if _, err := codec.Verify(access, TokenKindRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access-as-refresh err = %v, want ErrInvalidToken", err)
	}
	if _, err := codec.Verify(refresh, TokenKindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh-as-access err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongKindSameSecret(t *testing.T) {
	// same secret for both kinds forces the check down to token_kind
	codec := NewTokenCodec("storefront-api-test",
		"shared-secret-0123456789-0123456789-a",
		"shared-secret-0123456789-0123456789-a",
		15*time.Minute, time.Hour)
	access, err := codec.Sign(42, "ada@example.com", TokenKindAccess)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(access, TokenKindRefresh); !errors.Is(err, ErrWrongTokenKind) {
		t.Fatalf("err = %v, want ErrWrongTokenKind", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	expiredCodec := NewTokenCodec("storefront-api-test",
		"access-secret-0123456789-0123456789-ab",
		"refresh-secret-0123456789-0123456789-a",
		-time.Minute, -time.Minute)
	raw, err := expiredCodec.Sign(42, "ada@example.com", TokenKindAccess)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := expiredCodec.Verify(raw, TokenKindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	codec := newCodec()
	other := NewTokenCodec("storefront-api-test",
		"other-access-secret-0123456789-01234",
		"other-refresh-secret-0123456789-0123",
		15*time.Minute, time.Hour)
	raw, err := other.Sign(42, "ada@example.com", TokenKindAccess)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(raw, TokenKindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newCodec()
	for _, raw := range []string{"", "x", "a.b.c"} {
		if _, err := codec.Verify(raw, TokenKindAccess); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) err = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestSignRejectsUnknownKind(t *testing.T) {
	codec := newCodec()
	if _, err := codec.Sign(42, "ada@example.com", "session"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	codec := newCodec()
	a, err := codec.Sign(42, "ada@example.com", TokenKindRefresh)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	b, err := codec.Sign(42, "ada@example.com", TokenKindRefresh)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if a == b {
		t.Fatal("two tokens for the same user must differ")
	}
}
