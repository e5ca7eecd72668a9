// Package handler exposes the auth flows over HTTP. The refresh token travels
// in an httpOnly SameSite=Strict cookie; the access token in response bodies.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snapfeed/backend/internal/auth/service"
	"snapfeed/backend/internal/server"
	userdomain "snapfeed/backend/internal/user/domain"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// AuthHandler serves /auth endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	refreshTTL time.Duration
	secure     bool // Secure cookie attribute; true in production
}

// NewAuthHandler returns an AuthHandler. secure controls the cookie Secure attribute.
func NewAuthHandler(auth *service.AuthService, refreshTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, refreshTTL: refreshTTL, secure: secure}
}

// Mount attaches the auth routes to the public group.
func (h *AuthHandler) Mount(public *gin.RouterGroup) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	public.POST("/auth/logout", h.Logout)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Device   string `json:"device"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
}

type authResponse struct {
	AccessToken string                `json:"accessToken"`
	ExpiresAt   time.Time             `json:"expiresAt"`
	User        userdomain.PublicUser `json:"user"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Device)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"message": "user already exists"})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Msg})
		default:
			h.serverError(c, err)
		}
		return
	}
	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, authResponse{AccessToken: result.AccessToken, ExpiresAt: result.AccessExpiresAt, User: result.User})
}

// Login handles POST /auth/login. Unknown email and wrong password produce
// the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.Device)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		h.serverError(c, err)
		return
	}
	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, authResponse{AccessToken: result.AccessToken, ExpiresAt: result.AccessExpiresAt, User: result.User})
}

// Refresh handles POST /auth/refresh. The presented cookie is rotated: it is
// revoked and a new refresh cookie is set alongside the new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refresh token is required"})
		return
	}
	result, err := h.auth.Refresh(c.Request.Context(), refreshToken, "")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "refresh token has expired"})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "account not found"})
		case errors.Is(err, service.ErrInvalidRefreshToken):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid refresh token"})
		default:
			h.serverError(c, err)
		}
		return
	}
	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, authResponse{AccessToken: result.AccessToken, ExpiresAt: result.AccessExpiresAt, User: result.User})
}

// Logout handles POST /auth/logout. It succeeds with 204 whether or not a
// valid cookie is present, and clears the cookie regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err == nil && refreshToken != "" {
		if err := h.auth.Logout(c.Request.Context(), refreshToken); err != nil {
			// Revocation failures are logged but do not change the response.
			slog.Error("logout: revoke failed", "error", err)
		}
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, token, int(h.refreshTTL/time.Second), "/", "", h.secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", "", h.secure, true)
}

func (h *AuthHandler) serverError(c *gin.Context, err error) {
	slog.Error("auth: unexpected error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
