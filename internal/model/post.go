package model

import "time"

// Post is the parent of a strict aggregate: its images and code blocks never
// exist independently of it. All writes touching a post and its children go
// through one transaction in the repository layer.
type Post struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"authorId"`
	CategoryID int64     `json:"categoryId"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PostImage is a stored-object reference owned by a post.
type PostImage struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostCode is a code block owned by a post.
type PostCode struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChangeSummary reports what an edit actually changed. Counts reflect rows
// affected, not instructions received — deleting an id that doesn't exist
// contributes nothing.
type ChangeSummary struct {
	ImagesAdded   int `json:"addedImages"`
	ImagesRemoved int `json:"deletedImages"`
	CodesAdded    int `json:"addedCodes"`
	CodesUpdated  int `json:"updatedCodes"`
	CodesRemoved  int `json:"deletedCodes"`
}
