package domain

import "time"

// Post is a feed entry. Sender is the authoring account id; Likes holds the
// ids of accounts that liked the post and is exposed only as a count.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	ImageURL  string    `json:"imageUrl"`
	Likes     []string  `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// View is the response shape of a post: likes collapse to a count.
type View struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	ImageURL  string    `json:"imageUrl"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AsView returns the response shape of the post.
func (p *Post) AsView() View {
	return View{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Sender:    p.Sender,
		ImageURL:  p.ImageURL,
		Likes:     len(p.Likes),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
