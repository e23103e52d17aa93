package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/guard"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/reconcile"
	"github.com/sakif/devforum/internal/repository"
)

// mediaKindPostImage namespaces post image uploads in object storage.
const mediaKindPostImage = "post-images"

// PostService owns the post aggregate: create, edit, delete, and the
// assembled detail view.
type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	media      mediastore.Store
	logger     *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	media mediastore.Store,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		users:      users,
		categories: categories,
		media:      media,
		logger:     logger,
	}
}

// CreatePostInput carries a new post plus its attachments.
type CreatePostInput struct {
	CategoryID int64
	Title      string
	Body       string
	Images     []Upload
	Codes      []string
}

// Create validates the input, uploads every image, then writes the whole
// aggregate in one transaction. Blank code blocks are dropped, not stored.
func (s *PostService) Create(ctx context.Context, authorID int64, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apperror.ValidationFailed("text", "post text is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("post text must be %d characters or less", MaxBodyLength))
	}
	if len(in.Images) > MaxImagesPerPost {
		return nil, apperror.ValidationFailed("images",
			fmt.Sprintf("at most %d images per post", MaxImagesPerPost))
	}
	codes, err := validCodes(in.Codes)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("categoryId", "category does not exist")
		}
		return nil, err
	}

	imageURLs, err := s.uploadImages(ctx, authorID, in.Images)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:   authorID,
		CategoryID: in.CategoryID,
		Title:      title,
		Body:       body,
	}
	if err := s.posts.CreatePost(ctx, post, imageURLs, codes); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("authorId", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.Int64("authorId", authorID),
		slog.Int("images", len(imageURLs)),
		slog.Int("codes", len(codes)),
	)
	return post, nil
}

// EditPostInput carries an edit. Nil scalars mean "leave as is". Image and
// code children follow keep/add/delete instructions; KeepImageIDs is
// accepted for wire compatibility but keeps are implicit — anything not
// deleted stays.
type EditPostInput struct {
	CategoryID *int64
	Title      *string
	Body       *string

	KeepImageIDs   []int64
	DeleteImageIDs []int64
	NewImages      []Upload

	DeleteCodeIDs []int64
	CodeUpdates   []reconcile.CodeUpdate
	NewCodes      []string
}

// Edit applies an edit to the caller's own post. Uploads happen after the
// ownership check and before the transaction; the child diffs are then
// resolved against current rows inside it.
func (s *PostService) Edit(ctx context.Context, actingID, postID int64, in EditPostInput) (*model.ChangeSummary, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := guard.Owner("post", post.AuthorID, actingID); err != nil {
		return nil, err
	}

	patch := repository.PostPatch{
		CategoryID: in.CategoryID,
		Images: reconcile.ImageInstructions{
			KeepIDs:   in.KeepImageIDs,
			DeleteIDs: in.DeleteImageIDs,
		},
		Codes: reconcile.CodeInstructions{
			DeleteIDs: in.DeleteCodeIDs,
			Updates:   in.CodeUpdates,
			New:       in.NewCodes,
		},
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title cannot be blank")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		patch.Title = &title
	}
	if in.Body != nil {
		body := strings.TrimSpace(*in.Body)
		if body == "" {
			return nil, apperror.ValidationFailed("text", "post text cannot be blank")
		}
		patch.Body = &body
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ValidationFailed("categoryId", "category does not exist")
			}
			return nil, err
		}
	}

	patch.NewImageURLs, err = s.uploadImages(ctx, actingID, in.NewImages)
	if err != nil {
		return nil, err
	}

	summary, err := s.posts.EditPost(ctx, postID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("post edited",
		slog.Int64("id", postID),
		slog.Int64("editorId", actingID),
		slog.Int("imagesAdded", summary.ImagesAdded),
		slog.Int("imagesRemoved", summary.ImagesRemoved),
		slog.Int("codesAdded", summary.CodesAdded),
		slog.Int("codesUpdated", summary.CodesUpdated),
		slog.Int("codesRemoved", summary.CodesRemoved),
	)
	return summary, nil
}

// Delete removes the caller's own post and everything under it.
func (s *PostService) Delete(ctx context.Context, actingID, postID int64) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := guard.Owner("post", post.AuthorID, actingID); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.Int64("id", postID), slog.Int64("byId", actingID))
	return nil
}

/// GetDetail assembles the full read model for one post: scalars, author,
// category, images, codes, and every comment with its own author and
// children. Comment children come back in two IN-batched queries total, not
// two per comment.
func (s *PostService) GetDetail(ctx context.Context, postID int64) (*model.PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	detail := &model.PostDetail{Post: *post}

	// Author and category rows may have vanished; the post still renders.
	if author, err := s.users.GetUserByID(ctx, post.AuthorID); err == nil {
		detail.AuthorName = author.DisplayName
		detail.AuthorAvatar = author.AvatarURL
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if category, err := s.categories.GetCategoryByID(ctx, post.CategoryID); err == nil {
		detail.CategoryName = category.Name
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	if detail.Images, err = s.posts.ListPostImages(ctx, postID); err != nil {
		return nil, err
	}
	if detail.Codes, err = s.posts.ListPostCodes(ctx, postID); err != nil {
		return nil, err
	}

	detail.Comments, err = assembleComments(ctx, s.comments, postID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns post summaries, newest first. categoryID = 0 means all.
func (s *PostService) List(ctx context.Context, categoryID int64, limit, offset int) ([]model.PostSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.posts.ListPosts(ctx, categoryID, repository.ListOptions{Limit: limit, Offset: offset})
}

// uploadImages pushes each upload to object storage and collects the URLs.
// The first failure aborts: the database hasn't been touched yet.
func (s *PostService) uploadImages(ctx context.Context, ownerID int64, images []Upload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if len(img.Data) == 0 {
			return nil, apperror.ValidationFailed("images", "empty image upload")
		}
		if len(img.Data) > MaxImageBytes {
			return nil, apperror.ValidationFailed("images",
				fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
		}
		url, err := s.media.Store(ctx, mediaKindPostImage, img.Data, img.ContentType, ownerID)
		if err != nil {
			s.logger.Error("image upload failed",
				slog.Int64("ownerId", ownerID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// validCodes trims, drops blanks, and length-checks code blocks.
func validCodes(codes []string) ([]string, error) {
	kept := reconcile.NonBlank(codes)
	for _, code := range kept {
		if len(code) > MaxCodeLength {
			return nil, apperror.ValidationFailed("codes",
				fmt.Sprintf("code block must be %d characters or less", MaxCodeLength))
		}
	}
	return kept, nil
}

// assembleComments builds the comment read models for a post: one query for
// the comments, one for all their images, one for all their codes.
func assembleComments(ctx context.Context, repo repository.CommentRepository, postID int64) ([]model.CommentDetail, error) {
	comments, err := repo.ListCommentsForPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]int64, len(comments))
	index := make(map[int64]int, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		index[c.ID] = i
	}

	images, err := repo.ListCommentImagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		i := index[img.CommentID]
		comments[i].Images = append(comments[i].Images, img)
	}

	codes, err := repo.ListCommentCodesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		i := index[code.CommentID]
		comments[i].Codes = append(comments[i].Codes, code)
	}
	return comments, nil
}
