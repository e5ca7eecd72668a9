// Package handler serves the post endpoints: CRUD over the generic handler,
// plus captioning on create, like toggling, and image upload.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapfeed/backend/internal/audit"
	"snapfeed/backend/internal/caption"
	"snapfeed/backend/internal/crud"
	"snapfeed/backend/internal/post/domain"
	"snapfeed/backend/internal/post/repository"
	"snapfeed/backend/internal/server"
	"snapfeed/backend/internal/storage"
)

// Captioner produces a title and description for an image source.
type Captioner interface {
	AnalyzeImage(ctx context.Context, source string) (caption.Result, error)
}

// PostHandler serves /posts. CRUD reads and deletes delegate to the generic
// handler; create, like, and upload have post-specific behavior.
type PostHandler struct {
	crud      *crud.Handler[domain.Post]
	repo      repository.Repository
	captioner Captioner
	store     storage.Store
	audit     audit.AuditLogger
}

// NewPostHandler wires the post endpoints. captioner and store may be nil
// when captioning or uploads are disabled.
func NewPostHandler(repo repository.Repository, captioner Captioner, store storage.Store, auditLogger audit.AuditLogger) *PostHandler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	h := &PostHandler{
		repo:      repo,
		captioner: captioner,
		store:     store,
		audit:     auditLogger,
	}
	h.crud = crud.NewHandler[domain.Post](repo, h.prepare, func(p *domain.Post) any { return p.AsView() })
	return h
}

// Register mounts the post routes. Reads are public; writes require auth.
func (h *PostHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("/posts", h.crud.FindByFilter)
	public.GET("/posts/:id", h.crud.FindByID)
	protected.POST("/posts", h.Insert)
	protected.PUT("/posts/:id", h.crud.Update)
	protected.DELETE("/posts/:id", h.crud.DeleteByID)
	protected.POST("/posts/:id/like", h.ToggleLike)
	protected.POST("/posts/image", h.UploadImage)
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

// Insert handles POST /posts. When title or content is missing and an image
// URL is present, the captioner fills in the blanks.
func (h *PostHandler) Insert(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	sender, ok := server.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing authorization token"})
		return
	}

	if (req.Title == "" || req.Content == "") && req.ImageURL != "" {
		if !h.fillCaption(c, sender, &req) {
			return
		}
	}
	if req.Title == "" && req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title, content, or imageUrl is required"})
		return
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		Sender:    sender,
		ImageURL:  req.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Insert(c.Request.Context(), post); err != nil {
		slog.Error("posts: insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, post.AsView())
}

// ToggleLike handles POST /posts/:id/like.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, ok := server.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing authorization token"})
		return
	}
	liked, found, err := h.repo.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		slog.Error("posts: toggle like failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}
	message := "post unliked successfully"
	if liked {
		message = "post liked successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}

// UploadImage handles POST /posts/image: store the multipart file, caption
// it, and return the public URL with the suggested title and content.
func (h *PostHandler) UploadImage(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "uploads are disabled"})
		return
	}
	userID, _ := server.UserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
		return
	}
	defer src.Close()

	name := fmt.Sprintf("%s%s", uuid.New(), filepath.Ext(file.Filename))
	url, err := h.store.Save(c.Request.Context(), name, src)
	if err != nil {
		slog.Error("posts: upload failed", "error", err)
		h.audit.LogEvent(c.Request.Context(), userID, audit.ActionUpload, audit.OutcomeFailure, map[string]string{"file": file.Filename})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	h.audit.LogEvent(c.Request.Context(), userID, audit.ActionUpload, audit.OutcomeSuccess, map[string]string{"url": url})

	req := createPostRequest{ImageURL: url}
	if h.captioner != nil {
		// Upload answers 200 with whatever caption could be produced.
		if res, err := h.captioner.AnalyzeImage(c.Request.Context(), url); err == nil {
			req.Title = res.Title
			req.Content = res.Content
			h.audit.LogEvent(c.Request.Context(), userID, audit.ActionCaption, audit.OutcomeSuccess, map[string]string{"source": url})
		} else {
			slog.Warn("posts: captioning uploaded image failed", "error", err)
			h.audit.LogEvent(c.Request.Context(), userID, audit.ActionCaption, audit.OutcomeFailure, map[string]string{"source": url})
		}
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "title": req.Title, "content": req.Content})
}

// fillCaption captions req.ImageURL into the missing fields. It writes the
// error response and returns false when captioning fails.
func (h *PostHandler) fillCaption(c *gin.Context, sender string, req *createPostRequest) bool {
	if h.captioner == nil {
		return true
	}
	res, err := h.captioner.AnalyzeImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		h.audit.LogEvent(c.Request.Context(), sender, audit.ActionCaption, audit.OutcomeFailure, map[string]string{"source": req.ImageURL})
		switch {
		case errors.Is(err, caption.ErrInvalidSource):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid image source"})
		case errors.Is(err, caption.ErrSourceUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "image source unavailable"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"message": "caption generation failed"})
		}
		return false
	}
	h.audit.LogEvent(c.Request.Context(), sender, audit.ActionCaption, audit.OutcomeSuccess, map[string]string{"source": req.ImageURL})
	if req.Title == "" {
		req.Title = res.Title
	}
	if req.Content == "" {
		req.Content = res.Content
	}
	return true
}

// prepare backs the generic Update: stamp the authenticated sender and the
// update time. The repository keeps created_at and sender immutable.
func (h *PostHandler) prepare(c *gin.Context, post *domain.Post) error {
	sender, ok := server.UserID(c)
	if !ok {
		return errors.New("missing authorization token")
	}
	post.Sender = sender
	post.UpdatedAt = time.Now().UTC()
	return nil
}
