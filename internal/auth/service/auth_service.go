package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"snapfeed/backend/internal/audit"
	"snapfeed/backend/internal/security"
	tokendomain "snapfeed/backend/internal/token/domain"
	tokenrepo "snapfeed/backend/internal/token/repository"
	userdomain "snapfeed/backend/internal/user/domain"
	userrepo "snapfeed/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
	ErrAccountNotFound        = errors.New("account not found")
)

// ValidationError reports rejected registration input. Its message is safe to
// return to clients; any other error from the service is not.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthResult holds the outcome of Register, Login, or Refresh: the token pair
// and the public account view.
type AuthResult struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             userdomain.PublicUser
}

// AuthService implements register, login, refresh, and logout over the user
// and refresh token stores.
type AuthService struct {
	users    userrepo.Repository
	tokens   tokenrepo.Repository
	hasher   *security.Hasher
	provider *security.TokenProvider
	audit    audit.AuditLogger
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users userrepo.Repository, tokens tokenrepo.Repository, hasher *security.Hasher, provider *security.TokenProvider, auditLogger audit.AuditLogger) *AuthService {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		provider: provider,
		audit:    auditLogger,
	}
}

// Register creates an account with a hashed password and returns a fresh token
// pair. Fails with ErrEmailAlreadyRegistered when the email is taken.
func (s *AuthService) Register(ctx context.Context, email, password, name, device string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.audit.LogEvent(ctx, "", audit.ActionRegister, audit.OutcomeFailure, map[string]string{"reason": "duplicate_email"})
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			// Lost the race against a concurrent registration of the same email.
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	result, err := s.issueTokens(ctx, user, device)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionRegister, audit.OutcomeSuccess, nil)
	return result, nil
}

// Login authenticates with email and password and returns a fresh token pair.
// A wrong password and an unknown email produce the same ErrInvalidCredentials,
// so responses do not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password, device string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Hash anyway so absent and present accounts take comparable time.
		_ = s.hasher.Compare("$2a$12$C6UzMDM.H6dfI/f/IKcEeO7ZBpUvuGK9WbWmo58zGhLDUuda7lEym", []byte(password))
		s.audit.LogEvent(ctx, "", audit.ActionLogin, audit.OutcomeFailure, map[string]string{"reason": "unknown_email"})
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.audit.LogEvent(ctx, user.ID, audit.ActionLogin, audit.OutcomeFailure, map[string]string{"reason": "bad_password"})
		return nil, ErrInvalidCredentials
	}
	result, err := s.issueTokens(ctx, user, device)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionLogin, audit.OutcomeSuccess, nil)
	return result, nil
}

// Refresh validates the presented refresh token, rotates it, and returns a new
// token pair. Rotation revokes the presented token with a single conditional
// write, so of two concurrent refreshes with the same token exactly one
// succeeds and the other fails with ErrInvalidRefreshToken. Presenting a token
// that was already rotated revokes every token of the account.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, device string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	userID, _, err := s.provider.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrRefreshTokenExpired
		}
		return nil, ErrInvalidRefreshToken
	}
	hash := security.HashRefreshToken(refreshToken)
	stored, err := s.tokens.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrInvalidRefreshToken
	}
	now := time.Now().UTC()
	if stored.RevokedAt != nil {
		// A rotated token came back. Assume the account's tokens are
		// compromised and revoke all of them; the client must log in again.
		_ = s.tokens.RevokeAllByUser(ctx, stored.UserID, now)
		s.audit.LogEvent(ctx, stored.UserID, audit.ActionRefresh, audit.OutcomeFailure, map[string]string{"reason": "token_reused"})
		return nil, ErrInvalidRefreshToken
	}
	if !now.Before(stored.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	won, err := s.tokens.RevokeIfActive(ctx, hash, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost an in-flight rotation race; the concurrent winner already
		// rotated this token, so there is no family to revoke.
		s.audit.LogEvent(ctx, user.ID, audit.ActionRefresh, audit.OutcomeFailure, map[string]string{"reason": "rotation_race"})
		return nil, ErrInvalidRefreshToken
	}
	// Prune this account's dead records while we hold a fresh view of it.
	_ = s.tokens.DeleteExpired(ctx, user.ID, now)
	result, err := s.issueTokens(ctx, user, device)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionRefresh, audit.OutcomeSuccess, nil)
	return result, nil
}

// Logout revokes the presented refresh token. An empty, malformed, or unknown
// token is a no-op: logout is idempotent and never reports whether the token
// was valid.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	userID, _, err := s.provider.Verify(refreshToken)
	if err != nil {
		s.audit.LogEvent(ctx, "", audit.ActionLogout, audit.OutcomeFailure, map[string]string{"reason": "invalid_token"})
		return nil
	}
	if err := s.tokens.Revoke(ctx, security.HashRefreshToken(refreshToken), time.Now().UTC()); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, userID, audit.ActionLogout, audit.OutcomeSuccess, nil)
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *userdomain.User, device string) (*AuthResult, error) {
	accessToken, accessExp, err := s.provider.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.provider.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	record := &tokendomain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: security.HashRefreshToken(refreshToken),
		Device:    strings.TrimSpace(device),
		IssuedAt:  now,
		ExpiresAt: refreshExp,
	}
	if err := s.tokens.Add(ctx, record); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
		User:             user.Public(),
	}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Msg: "email is required"}
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return &ValidationError{Msg: "invalid email format"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}
