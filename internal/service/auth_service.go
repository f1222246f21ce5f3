package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"
	"storefront-api/internal/security"
)

const minPasswordLength = 8

// AuthResult is what register, login and refresh hand back: a fresh token
// pair plus the user snapshot (password hash never leaves the service).
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// AuthService owns the session lifecycle: credential checks, token pair
// issuance, refresh rotation and revocation. Per user the state machine is
// anonymous -> authenticated (login/register) -> revoked (logout); refresh
// keeps a session authenticated by replacing the stored record in place.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	codec  *security.TokenCodec
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens repository.RefreshTokenRepository, codec *security.TokenCodec, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, codec: codec, logger: logger}
}

func (s *AuthService) Register(email, password, name string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateRegistration(email, password, name); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		return nil, ErrRegistrationFailed
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.logger.Error("user create failed", "email_domain", emailDomain(email), "error", err)
		return nil, ErrRegistrationFailed
	}

	result, err := s.issuePair(user)
	if err != nil {
		s.logger.Error("token issuance failed", "user_id", user.ID, "error", err)
		return nil, ErrRegistrationFailed
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return result, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.ComparePassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	result, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Refresh validates the presented token at the codec first, so a forged or
// expired token never reaches the database. It then requires the stored
// record to hold exactly this token, unrevoked and unexpired; the final
// rotation is a compare-and-swap, so of two concurrent refreshes with the
// same token exactly one wins and the loser gets ErrInvalidRefreshToken.
func (s *AuthService) Refresh(presented string) (*AuthResult, error) {
	claims, err := s.codec.Verify(presented, security.TokenKindRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	rec, err := s.tokens.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if rec.Token != presented || !rec.Active(time.Now()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	access, err := s.codec.Sign(user.ID, user.Email, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Sign(user.ID, user.Email, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	rotated, err := s.tokens.Rotate(user.ID, presented, refresh, time.Now().Add(s.codec.RefreshTTL()))
	if err != nil {
		return nil, err
	}
	if !rotated {
		// another refresh won the race and the presented token is stale now
		return nil, ErrInvalidRefreshToken
	}
	s.logger.Info("session refreshed", "user_id", user.ID)
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout revokes the stored refresh record. Idempotent: revoking an already
// revoked or missing record is a no-op. The current access token stays
// valid until its natural expiry; the gate does not consult the store.
func (s *AuthService) Logout(userID uint) error {
	if err := s.tokens.Revoke(userID); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// VerifyAccessToken is the stateless per-request check used by the auth
// middleware. It never touches the refresh-token store.
func (s *AuthService) VerifyAccessToken(raw string) (*security.Claims, error) {
	return s.codec.Verify(raw, security.TokenKindAccess)
}

// RefreshTTL mirrors the codec's refresh lifetime for cookie MaxAge.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.codec.RefreshTTL()
}

func (s *AuthService) GetUserByID(id uint) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// issuePair mints a fresh access/refresh pair and overwrites the user's
// refresh record, implicitly invalidating whatever token was stored before.
func (s *AuthService) issuePair(user *domain.User) (*AuthResult, error) {
	access, err := s.codec.Sign(user.ID, user.Email, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Sign(user.ID, user.Email, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Upsert(&domain.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(s.codec.RefreshTTL()),
		IsRevoked: false,
	}); err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password, name string) error {
	if email == "" || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return "unknown"
}
