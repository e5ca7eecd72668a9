package crud

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"snapfeed/backend/internal/server"
)

// Handler serves the generic CRUD endpoints of one entity type.
type Handler[T any] struct {
	repo Repository[T]
	// prepare runs before Insert and Update with the bound entity, e.g. to
	// stamp ids, timestamps, and the authenticated sender. May be nil.
	prepare func(c *gin.Context, item *T) error
	// render maps an entity to its response shape. Identity when nil.
	render func(item *T) any
}

// NewHandler returns a Handler over repo. prepare and render may be nil.
func NewHandler[T any](repo Repository[T], prepare func(c *gin.Context, item *T) error, render func(item *T) any) *Handler[T] {
	return &Handler[T]{repo: repo, prepare: prepare, render: render}
}

// Insert handles POST /: bind body, prepare, persist, return 201.
func (h *Handler[T]) Insert(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	if err := h.runPrepare(c, &item); err != nil {
		return
	}
	if err := h.repo.Insert(c.Request.Context(), &item); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(&item))
}

// FindByID handles GET /:id.
func (h *Handler[T]) FindByID(c *gin.Context) {
	item, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.JSON(http.StatusOK, h.view(item))
}

// FindByFilter handles GET /: query params become the filter.
func (h *Handler[T]) FindByFilter(c *gin.Context) {
	filter := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}
	items, err := h.repo.FindByFilter(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, h.view(item))
	}
	c.JSON(http.StatusOK, out)
}

// Update handles PUT /:id.
func (h *Handler[T]) Update(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, server.BindError(err))
		return
	}
	if err := h.runPrepare(c, &item); err != nil {
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), &item)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.JSON(http.StatusOK, h.view(updated))
}

// DeleteByID handles DELETE /:id.
func (h *Handler[T]) DeleteByID(c *gin.Context) {
	found, err := h.repo.DeleteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[T]) runPrepare(c *gin.Context, item *T) error {
	if h.prepare == nil {
		return nil
	}
	if err := h.prepare(c, item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return err
	}
	return nil
}

func (h *Handler[T]) view(item *T) any {
	if h.render == nil {
		return item
	}
	return h.render(item)
}

func (h *Handler[T]) serverError(c *gin.Context, err error) {
	slog.Error("crud: unexpected error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
