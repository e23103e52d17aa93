package model

import "time"

// Comment mirrors the post aggregate one level down: a comment owns its
// images and code blocks the same way a post does.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentImage is a stored-object reference owned by a comment.
type CommentImage struct {
	ID        int64     `json:"id"`
	CommentID int64     `json:"commentId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentCode is a code block owned by a comment.
type CommentCode struct {
	ID        int64     `json:"id"`
	CommentID int64     `json:"commentId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}
