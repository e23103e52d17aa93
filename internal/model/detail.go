package model

import "time"

// PostDetail is the fully assembled read model for a single post: the post
// row enriched with its author, category name, child collections, and every
// comment (each itself enriched). Built by the service layer from batched
// repository reads — never one query per comment.
type PostDetail struct {
	Post
	AuthorName    string          `json:"authorName"`
	AuthorAvatar  string          `json:"authorAvatar,omitempty"`
	CategoryName  string          `json:"categoryName,omitempty"`
	Images        []PostImage     `json:"images"`
	Codes         []PostCode      `json:"codes"`
	Comments      []CommentDetail `json:"comments"`
}

// CommentDetail is a comment enriched with its author and children.
// Comments are ordered newest first everywhere, including inside PostDetail.
type CommentDetail struct {
	Comment
	AuthorName   string         `json:"authorName"`
	AuthorAvatar string         `json:"authorAvatar,omitempty"`
	Images       []CommentImage `json:"images"`
	Codes        []CommentCode  `json:"codes"`
}

// PostSummary is the list-view row: a post with its author's name, without
// child collections.
type PostSummary struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CategoryID int64     `json:"categoryId"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
}
