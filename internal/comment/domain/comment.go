package domain

import (
	"errors"
	"strings"
	"time"
)

// Comment is a reply on a post. Sender is the authoring account id.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields a client controls.
func (c *Comment) Validate() error {
	if c.PostID == "" {
		return errors.New("postId is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}
