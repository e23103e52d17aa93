package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

const mediaKindCommentImage = "comment-images"

// CommentService owns the comment aggregate under a post.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	media    mediastore.Store
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	media mediastore.Store,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, media: media, logger: logger}
}

// CreateCommentInput carries a new comment plus its attachments.
type CreateCommentInput struct {
	Text   string
	Images []Upload
	Codes  []string
}

// Create validates, uploads images, and writes the comment aggregate in one
// transaction. The target post must exist.
func (s *CommentService) Create(ctx context.Context, authorID, postID int64, in CreateCommentInput) (*model.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxBodyLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("comment text must be %d characters or less", MaxBodyLength))
	}
	if len(in.Images) > MaxImagesPerPost {
		return nil, apperror.ValidationFailed("images",
			fmt.Sprintf("at most %d images per comment", MaxImagesPerPost))
	}
	codes, err := validCodes(in.Codes)
	if err != nil {
		return nil, err
	}

	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	imageURLs := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if len(img.Data) == 0 {
			return nil, apperror.ValidationFailed("images", "empty image upload")
		}
		if len(img.Data) > MaxImageBytes {
			return nil, apperror.ValidationFailed("images",
				fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
		}
		url, err := s.media.Store(ctx, mediaKindCommentImage, img.Data, img.ContentType, authorID)
		if err != nil {
			s.logger.Error("comment image upload failed",
				slog.Int64("authorId", authorID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		imageURLs = append(imageURLs, url)
	}

	comment := &model.Comment{PostID: postID, AuthorID: authorID, Text: text}
	if err := s.comments.CreateComment(ctx, comment, imageURLs, codes); err != nil {
		s.logger.Error("failed to create comment",
			slog.Int64("postId", postID),
			slog.Int64("authorId", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.Int64("id", comment.ID),
		slog.Int64("postId", postID),
		slog.Int64("authorId", authorID),
	)
	return comment, nil
}

// ListForPost returns a post's comments with authors and children, newest
// first. The post must exist.
func (s *CommentService) ListForPost(ctx context.Context, postID int64) ([]model.CommentDetail, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	return assembleComments(ctx, s.comments, postID)
}
