package models

import (
	"time"
)

// Post represents a monitored post. Comments are ordered most recent first.
type Post struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	Image     string    `json:"image,omitempty" db:"image"`
	Likes     int       `json:"likes" db:"likes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Comments  []Comment `json:"comments" db:"-"`
}

// Clone returns a copy of p with its own comment slice
func (p Post) Clone() Post {
	out := p
	out.Comments = append([]Comment(nil), p.Comments...)
	return out
}

// FindComment returns the index of the comment with the given id, or -1
func (p Post) FindComment(id string) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
	Likes   int    `json:"likes"`
}

// Stats summarizes automation activity
type Stats struct {
	Posts          int                   `json:"posts"`
	Comments       map[CommentStatus]int `json:"comments"`
	DMsSent        int                   `json:"dms_sent"`
	ReplyFallbacks int                   `json:"reply_fallbacks"`
	DMFallbacks    int                   `json:"dm_fallbacks"`
}
