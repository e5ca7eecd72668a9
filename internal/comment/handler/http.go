// Package handler serves the comment endpoints through the generic CRUD
// handler.
package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapfeed/backend/internal/comment/domain"
	"snapfeed/backend/internal/crud"
	"snapfeed/backend/internal/server"
)

var errMissingAuth = errors.New("missing authorization token")

// CommentHandler serves /comments.
type CommentHandler struct {
	crud *crud.Handler[domain.Comment]
}

// NewCommentHandler wires the comment endpoints over repo.
func NewCommentHandler(repo crud.Repository[domain.Comment]) *CommentHandler {
	h := &CommentHandler{}
	h.crud = crud.NewHandler[domain.Comment](repo, h.prepare, nil)
	return h
}

// Register mounts the comment routes. Reads are public; writes require auth.
func (h *CommentHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("/comments", h.crud.FindByFilter)
	public.GET("/comments/:id", h.crud.FindByID)
	protected.POST("/comments", h.crud.Insert)
	protected.PUT("/comments/:id", h.crud.Update)
	protected.DELETE("/comments/:id", h.crud.DeleteByID)
}

// prepare validates the bound comment and stamps id, sender, and creation
// time before insert or update.
func (h *CommentHandler) prepare(c *gin.Context, comment *domain.Comment) error {
	if err := comment.Validate(); err != nil {
		return err
	}
	sender, ok := server.UserID(c)
	if !ok {
		return errMissingAuth
	}
	comment.Sender = sender
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	return nil
}
