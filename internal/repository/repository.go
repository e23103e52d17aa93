// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage implements them; tests substitute
// in-memory mocks. Every aggregate write (a parent row plus its child
// collections) is a single transaction inside the implementation — callers
// never see a partially applied post or comment.
package repository

import (
	"context"

	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/reconcile"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PostPatch carries everything an edit may change. Nil scalar fields mean
// "leave as is". Image uploads happen before the patch is applied, so new
// images arrive here as already-stored URLs.
type PostPatch struct {
	CategoryID *int64
	Title      *string
	Body       *string

	Images       reconcile.ImageInstructions
	NewImageURLs []string
	Codes        reconcile.CodeInstructions
}

type PostRepository interface {
	// CreatePost inserts the post and all its children in one transaction
	// and fills in the generated id and timestamp.
	CreatePost(ctx context.Context, post *model.Post, imageURLs []string, codes []string) error
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	// EditPost applies the patch in one transaction: scalar updates, then
	// the image and code diffs computed against the child rows as they exist
	// at transaction time. Returns counts of rows actually changed.
	EditPost(ctx context.Context, postID int64, patch PostPatch) (*model.ChangeSummary, error)
	// DeletePost cascades: post images, post codes, every comment's images
	// and codes, the comments, then the post — one transaction, innermost
	// first.
	DeletePost(ctx context.Context, postID int64) error
	ListPosts(ctx context.Context, categoryID int64, opts ListOptions) ([]model.PostSummary, error)
	ListPostImages(ctx context.Context, postID int64) ([]model.PostImage, error)
	ListPostCodes(ctx context.Context, postID int64) ([]model.PostCode, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment, imageURLs []string, codes []string) error
	// ListCommentsForPost returns author-enriched comments, newest first.
	// Child collections are fetched separately with ListCommentImagesFor /
	// ListCommentCodesFor so the assembler issues two batched queries
	// instead of two per comment.
	ListCommentsForPost(ctx context.Context, postID int64) ([]model.CommentDetail, error)
	ListCommentImagesFor(ctx context.Context, commentIDs []int64) ([]model.CommentImage, error)
	ListCommentCodesFor(ctx context.Context, commentIDs []int64) ([]model.CommentCode, error)
	GetCommentByID(ctx context.Context, id int64) (*model.Comment, error)
}

type UserRepository interface {
	// UpsertUserByEmail creates the row on first login (role student, status
	// active) or loads the existing one; either way user is filled with the
	// canonical record.
	UpsertUserByEmail(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, displayName, avatarURL *string) (*model.User, error)
	// SetUserStatus is the moderation write: rewrites display_name and
	// status in one statement. Users are never hard-deleted.
	SetUserStatus(ctx context.Context, id int64, status, displayName string) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	// DeleteCategory removes the category and cascades through every post
	// under it (and their comments) in one transaction.
	DeleteCategory(ctx context.Context, id int64) error
}

type ReportRepository interface {
	// CreateReport inserts the report unless the same (reporter, target)
	// tuple already exists, in which case it fails with
	// apperror.ErrDuplicate and writes nothing.
	CreateReport(ctx context.Context, report *model.Report) error
	SetReportStatus(ctx context.Context, id int64, status string, reviewerID int64) (*model.Report, error)
	ListReports(ctx context.Context) ([]model.ReportDetail, error)
}
