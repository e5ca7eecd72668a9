package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"snapfeed/backend/internal/auth/service"
	"snapfeed/backend/internal/security"
	tokendomain "snapfeed/backend/internal/token/domain"
	userdomain "snapfeed/backend/internal/user/domain"
	userrepo "snapfeed/backend/internal/user/repository"
)

type stubUserRepo struct {
	mu    sync.Mutex
	fail  error // returned by GetByEmail when set
	users map[string]*userdomain.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return userrepo.ErrDuplicateEmail
		}
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*userdomain.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

type stubTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*tokendomain.RefreshToken
}

func (r *stubTokenRepo) Add(_ context.Context, t *tokendomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.tokens[t.TokenHash] = &copied
	return nil
}

func (r *stubTokenRepo) GetByTokenHash(_ context.Context, hash string) (*tokendomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (r *stubTokenRepo) Revoke(_ context.Context, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok && t.RevokedAt == nil {
		t.RevokedAt = &at
	}
	return nil
}

func (r *stubTokenRepo) RevokeIfActive(_ context.Context, hash string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok || !t.Active(at) {
		return false, nil
	}
	t.RevokedAt = &at
	return true, nil
}

func (r *stubTokenRepo) RevokeAllByUser(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revokedAt := at
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *stubTokenRepo) DeleteExpired(_ context.Context, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.UserID == userID && !now.Before(t.ExpiresAt) {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users := &stubUserRepo{users: map[string]*userdomain.User{}}
	tokens := &stubTokenRepo{tokens: map[string]*tokendomain.RefreshToken{}}
	provider := security.NewTokenProvider([]byte("test-secret-0123456789"), "snapfeed-auth", "snapfeed-api", time.Minute, time.Hour)
	svc := service.NewAuthService(users, tokens, security.NewHasher(4), provider, nil)
	h := NewAuthHandler(svc, time.Hour, false)

	router := gin.New()
	h.Mount(router.Group("/"))
	return router
}

func doJSON(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	t.Fatal("no refresh cookie in response")
	return nil
}

func TestRegisterSetsRefreshCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"correct horse","name":"Ada"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	cookie := refreshCookie(t, rec)
	if !cookie.HttpOnly {
		t.Error("refresh cookie should be httpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", cookie.SameSite)
	}
	if cookie.Value == "" {
		t.Error("refresh cookie should carry the token")
	}

	var body struct {
		AccessToken string         `json:"accessToken"`
		User        map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.AccessToken == "" {
		t.Error("expected access token in body")
	}
	if _, leaked := body.User["passwordHash"]; leaked {
		t.Error("password hash must not be serialized")
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("bcrypt hash leaked into response body")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"email":"ada@example.com","password":"correct horse","name":"Ada"}`

	if rec := doJSON(router, http.MethodPost, "/auth/register", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	rec := doJSON(router, http.MethodPost, "/auth/register", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "user already exists") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter(t)
	doJSON(router, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"correct horse","name":"Ada"}`)

	wrongPassword := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"ada@example.com","password":"wrong password"}`)
	unknownEmail := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"whatever123"}`)

	for name, rec := range map[string]*httptest.ResponseRecorder{"wrong password": wrongPassword, "unknown email": unknownEmail} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Error("login failure responses should be identical")
	}
}

func TestRegisterStoreFailureIsSanitized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := &stubUserRepo{
		users: map[string]*userdomain.User{},
		fail:  errors.New("pq: connection refused to db host 10.0.0.5"),
	}
	tokens := &stubTokenRepo{tokens: map[string]*tokendomain.RefreshToken{}}
	provider := security.NewTokenProvider([]byte("test-secret-0123456789"), "snapfeed-auth", "snapfeed-api", time.Minute, time.Hour)
	svc := service.NewAuthService(users, tokens, security.NewHasher(4), provider, nil)
	router := gin.New()
	NewAuthHandler(svc, time.Hour, false).Mount(router.Group("/"))

	rec := doJSON(router, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"correct horse","name":"Ada"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("database error detail leaked to client")
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRefreshRequiresCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/refresh", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "refresh token is required") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRefreshRotatesCookie(t *testing.T) {
	router := newTestRouter(t)
	registered := doJSON(router, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"correct horse","name":"Ada"}`)
	oldCookie := refreshCookie(t, registered)

	refreshed := doJSON(router, http.MethodPost, "/auth/refresh", "", oldCookie)
	if refreshed.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", refreshed.Code, refreshed.Body.String())
	}
	newCookie := refreshCookie(t, refreshed)
	if newCookie.Value == oldCookie.Value {
		t.Error("refresh should rotate the cookie value")
	}

	// Replaying the rotated-out cookie fails.
	replay := doJSON(router, http.MethodPost, "/auth/refresh", "", oldCookie)
	if replay.Code != http.StatusUnauthorized {
		t.Fatalf("replay status = %d, want 401", replay.Code)
	}
	if !strings.Contains(replay.Body.String(), "invalid refresh token") {
		t.Errorf("replay body = %s", replay.Body.String())
	}
}

func TestLogoutClearsCookieAlways(t *testing.T) {
	router := newTestRouter(t)
	registered := doJSON(router, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"correct horse","name":"Ada"}`)
	cookie := refreshCookie(t, registered)

	// With a valid cookie.
	rec := doJSON(router, http.MethodPost, "/auth/logout", "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	cleared := refreshCookie(t, rec)
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cleared.Value, cleared.MaxAge)
	}

	// Without any cookie; still 204 and still cleared.
	rec = doJSON(router, http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	refreshCookie(t, rec)

	// The logged-out token can no longer refresh.
	rec = doJSON(router, http.MethodPost, "/auth/refresh", "", cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout status = %d, want 401", rec.Code)
	}
}
