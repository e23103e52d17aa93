package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/model"
)

func newPostService(posts *mockPostRepo, comments *mockCommentRepo, categories *mockCategoryRepo, store mediastore.Store) *PostService {
	if store == nil {
		store = mediastore.NewMemory()
	}
	return NewPostService(posts, comments, &mockUserRepo{}, categories, store, testLogger())
}

func TestPostCreate_BlankTitleRejected(t *testing.T) {
	posts := &mockPostRepo{}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, nil)

	_, err := svc.Create(context.Background(), 1, CreatePostInput{Title: "   ", Body: "b", CategoryID: 1})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if posts.createCalls != 0 {
		t.Fatal("repository must not be reached on validation failure")
	}
}

func TestPostCreate_BlankCodeDropped(t *testing.T) {
	posts := &mockPostRepo{}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, nil)

	_, err := svc.Create(context.Background(), 1, CreatePostInput{
		Title:      "t",
		Body:       "b",
		CategoryID: 1,
		Codes:      []string{"print(1)", "   "},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(posts.lastCodes) != 1 || posts.lastCodes[0] != "print(1)" {
		t.Fatalf("expected only the non-blank code to be stored, got %v", posts.lastCodes)
	}
}

func TestPostCreate_UnknownCategoryRejected(t *testing.T) {
	categories := &mockCategoryRepo{
		getFn: func(ctx context.Context, id int64) (*model.Category, error) {
			return nil, apperror.NotFound("category", id)
		},
	}
	posts := &mockPostRepo{}
	svc := newPostService(posts, &mockCommentRepo{}, categories, nil)

	_, err := svc.Create(context.Background(), 1, CreatePostInput{Title: "t", Body: "b", CategoryID: 99})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if posts.createCalls != 0 {
		t.Fatal("repository must not be reached")
	}
}

func TestPostCreate_UploadFailureAbortsBeforeWrite(t *testing.T) {
	posts := &mockPostRepo{}
	store := &failingStore{err: apperror.Upstream("media upload", errors.New("connection refused"))}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, store)

	_, err := svc.Create(context.Background(), 1, CreatePostInput{
		Title:      "t",
		Body:       "b",
		CategoryID: 1,
		Images:     []Upload{{Data: []byte("img"), ContentType: "image/png"}},
	})
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if posts.createCalls != 0 {
		t.Fatal("a failed upload must abort before any database write")
	}
}

func TestPostEdit_NonOwnerForbidden(t *testing.T) {
	posts := &mockPostRepo{
		getFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{ID: id, AuthorID: 1, CategoryID: 1, Title: "t", Body: "b"}, nil
		},
	}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, nil)

	_, err := svc.Edit(context.Background(), 2, 10, EditPostInput{})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if posts.editCalls != 0 {
		t.Fatal("non-owner edit must not reach the repository")
	}
}

func TestPostEdit_BlankTitleRejected(t *testing.T) {
	posts := &mockPostRepo{}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, nil)

	blank := "  "
	_, err := svc.Edit(context.Background(), 1, 10, EditPostInput{Title: &blank})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if posts.editCalls != 0 {
		t.Fatal("repository must not be reached")
	}
}

func TestPostDelete_NonOwnerForbidden(t *testing.T) {
	posts := &mockPostRepo{}
	svc := newPostService(posts, &mockCommentRepo{}, &mockCategoryRepo{}, nil)

	err := svc.Delete(context.Background(), 99, 10)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if posts.deleteCalls != 0 {
		t.Fatal("non-owner delete must not reach the repository")
	}
}

func TestPostGetDetail_AssemblesChildren(t *testing.T) {
	comments := &mockCommentRepo{
		listFn: func(ctx context.Context, postID int64) ([]model.CommentDetail, error) {
			return []model.CommentDetail{
				{Comment: model.Comment{ID: 5, PostID: postID}, Images: []model.CommentImage{}, Codes: []model.CommentCode{}},
				{Comment: model.Comment{ID: 6, PostID: postID}, Images: []model.CommentImage{}, Codes: []model.CommentCode{}},
			}, nil
		},
		imagesFn: func(ctx context.Context, commentIDs []int64) ([]model.CommentImage, error) {
			if len(commentIDs) != 2 {
				t.Errorf("expected one batched call with 2 ids, got %v", commentIDs)
			}
			return []model.CommentImage{{ID: 1, CommentID: 6, URL: "u"}}, nil
		},
		codesFn: func(ctx context.Context, commentIDs []int64) ([]model.CommentCode, error) {
			return []model.CommentCode{{ID: 1, CommentID: 5, Code: "c"}}, nil
		},
	}
	svc := newPostService(&mockPostRepo{}, comments, &mockCategoryRepo{}, nil)

	detail, err := svc.GetDetail(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if len(detail.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(detail.Comments))
	}
	if len(detail.Comments[1].Images) != 1 {
		t.Errorf("image not stitched onto comment 6: %+v", detail.Comments[1])
	}
	if len(detail.Comments[0].Codes) != 1 {
		t.Errorf("code not stitched onto comment 5: %+v", detail.Comments[0])
	}
	if detail.CategoryName != "general" {
		t.Errorf("category name not assembled: %q", detail.CategoryName)
	}
}
