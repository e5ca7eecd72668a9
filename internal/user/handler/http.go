// Package handler serves the account endpoints. Responses always use the
// public view; the password hash never leaves the service.
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"snapfeed/backend/internal/server"
	"snapfeed/backend/internal/user/repository"
)

// UserHandler serves /users.
type UserHandler struct {
	users repository.Repository
}

// NewUserHandler wires the account endpoints over users.
func NewUserHandler(users repository.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// Register mounts the user routes on the auth-protected group.
func (h *UserHandler) Register(protected *gin.RouterGroup) {
	protected.GET("/users", h.List)
	protected.GET("/users/:id", h.Get)
	protected.PUT("/users/:id", h.Update)
	protected.DELETE("/users/:id", h.Delete)
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

type updateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

// Update handles PUT /users/:id. Only the display name is mutable here;
// email and password changes go through the auth flows.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	u.Name = strings.TrimSpace(req.Name)
	u.UpdatedAt = time.Now().UTC()
	if err := h.users.Update(c.Request.Context(), u); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err := h.users.Delete(c.Request.Context(), u.ID); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) serverError(c *gin.Context, err error) {
	slog.Error("users: unexpected error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
