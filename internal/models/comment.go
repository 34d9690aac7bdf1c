package models

import (
	"time"
)

// CommentStatus represents where a comment is in the automation lifecycle
type CommentStatus string

const (
	CommentStatusPending    CommentStatus = "pending"
	CommentStatusProcessing CommentStatus = "processing"
	CommentStatusCompleted  CommentStatus = "completed"
)

// next maps each status to the only status it may move to
var next = map[CommentStatus]CommentStatus{
	CommentStatusPending:    CommentStatusProcessing,
	CommentStatusProcessing: CommentStatusCompleted,
}

// CanTransition reports whether a comment may move from s to to
func (s CommentStatus) CanTransition(to CommentStatus) bool {
	return next[s] == to
}

// Author is the display identity of a commenter
type Author struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Handle string `json:"handle" yaml:"handle"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar"`
}

// Comment represents a comment on a post
type Comment struct {
	ID            string        `json:"id" db:"id"`
	PostID        string        `json:"post_id" db:"post_id"`
	AuthorID      string        `json:"author_id" db:"author_id"`
	Author        Author        `json:"author" db:"-"`
	Text          string        `json:"text" db:"text"`
	Status        CommentStatus `json:"status" db:"status"`
	Reply         string        `json:"reply,omitempty" db:"reply"`
	DMSent        bool          `json:"dm_sent" db:"dm_sent"`
	DMContent     string        `json:"dm_content,omitempty" db:"dm_content"`
	RuleID        string        `json:"rule_id,omitempty" db:"rule_id"`
	ReplyFallback bool          `json:"reply_fallback" db:"reply_fallback"`
	DMFallback    bool          `json:"dm_fallback" db:"dm_fallback"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// CommentDraft is a newly authored comment submitted for automation
type CommentDraft struct {
	Author Author `json:"author"`
	Text   string `json:"text"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500
