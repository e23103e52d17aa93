package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// Hand-written mocks: each method delegates to an optional func field and
// records that it was called, so tests can assert both behavior and that a
// guarded path never reached the repository.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPostRepo struct {
	createFn func(ctx context.Context, post *model.Post, imageURLs []string, codes []string) error
	getFn    func(ctx context.Context, id int64) (*model.Post, error)
	editFn   func(ctx context.Context, postID int64, patch repository.PostPatch) (*model.ChangeSummary, error)
	deleteFn func(ctx context.Context, postID int64) error

	createCalls int
	editCalls   int
	deleteCalls int

	lastImageURLs []string
	lastCodes     []string
	lastPatch     repository.PostPatch
}

func (m *mockPostRepo) CreatePost(ctx context.Context, post *model.Post, imageURLs []string, codes []string) error {
	m.createCalls++
	m.lastImageURLs = imageURLs
	m.lastCodes = codes
	if m.createFn != nil {
		return m.createFn(ctx, post, imageURLs, codes)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepo) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Post{ID: id, AuthorID: 1, CategoryID: 1, Title: "t", Body: "b"}, nil
}

func (m *mockPostRepo) EditPost(ctx context.Context, postID int64, patch repository.PostPatch) (*model.ChangeSummary, error) {
	m.editCalls++
	m.lastPatch = patch
	if m.editFn != nil {
		return m.editFn(ctx, postID, patch)
	}
	return &model.ChangeSummary{}, nil
}

func (m *mockPostRepo) DeletePost(ctx context.Context, postID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepo) ListPosts(context.Context, int64, repository.ListOptions) ([]model.PostSummary, error) {
	return []model.PostSummary{}, nil
}

func (m *mockPostRepo) ListPostImages(context.Context, int64) ([]model.PostImage, error) {
	return []model.PostImage{}, nil
}

func (m *mockPostRepo) ListPostCodes(context.Context, int64) ([]model.PostCode, error) {
	return []model.PostCode{}, nil
}

type mockCommentRepo struct {
	createFn func(ctx context.Context, comment *model.Comment, imageURLs []string, codes []string) error
	listFn   func(ctx context.Context, postID int64) ([]model.CommentDetail, error)
	imagesFn func(ctx context.Context, commentIDs []int64) ([]model.CommentImage, error)
	codesFn  func(ctx context.Context, commentIDs []int64) ([]model.CommentCode, error)
	getFn    func(ctx context.Context, id int64) (*model.Comment, error)

	createCalls int
	lastCodes   []string
}

func (m *mockCommentRepo) CreateComment(ctx context.Context, comment *model.Comment, imageURLs []string, codes []string) error {
	m.createCalls++
	m.lastCodes = codes
	if m.createFn != nil {
		return m.createFn(ctx, comment, imageURLs, codes)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepo) ListCommentsForPost(ctx context.Context, postID int64) ([]model.CommentDetail, error) {
	if m.listFn != nil {
		return m.listFn(ctx, postID)
	}
	return []model.CommentDetail{}, nil
}

func (m *mockCommentRepo) ListCommentImagesFor(ctx context.Context, commentIDs []int64) ([]model.CommentImage, error) {
	if m.imagesFn != nil {
		return m.imagesFn(ctx, commentIDs)
	}
	return []model.CommentImage{}, nil
}

func (m *mockCommentRepo) ListCommentCodesFor(ctx context.Context, commentIDs []int64) ([]model.CommentCode, error) {
	if m.codesFn != nil {
		return m.codesFn(ctx, commentIDs)
	}
	return []model.CommentCode{}, nil
}

func (m *mockCommentRepo) GetCommentByID(ctx context.Context, id int64) (*model.Comment, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Comment{ID: id, PostID: 1, AuthorID: 1, Text: "c"}, nil
}

type mockUserRepo struct {
	getFn       func(ctx context.Context, id int64) (*model.User, error)
	upsertFn    func(ctx context.Context, user *model.User) error
	setStatusFn func(ctx context.Context, id int64, status, displayName string) error

	setStatusCalls int
}

func (m *mockUserRepo) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, user)
	}
	user.ID = 1
	user.Role = model.RoleStudent
	user.Status = model.StatusActive
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.User{ID: id, DisplayName: "user", Role: model.RoleStudent, Status: model.StatusActive}, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int64, displayName, avatarURL *string) (*model.User, error) {
	u := &model.User{ID: id, Role: model.RoleStudent, Status: model.StatusActive}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if avatarURL != nil {
		u.AvatarURL = *avatarURL
	}
	return u, nil
}

func (m *mockUserRepo) SetUserStatus(ctx context.Context, id int64, status, displayName string) error {
	m.setStatusCalls++
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status, displayName)
	}
	return nil
}

type mockCategoryRepo struct {
	getFn    func(ctx context.Context, id int64) (*model.Category, error)
	deleteFn func(ctx context.Context, id int64) error

	deleteCalls int
}

func (m *mockCategoryRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	category.ID = 1
	return nil
}

func (m *mockCategoryRepo) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Category{ID: id, Name: "general"}, nil
}

func (m *mockCategoryRepo) ListCategories(context.Context) ([]model.Category, error) {
	return []model.Category{}, nil
}

func (m *mockCategoryRepo) DeleteCategory(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockReportRepo struct {
	createFn func(ctx context.Context, report *model.Report) error
	setFn    func(ctx context.Context, id int64, status string, reviewerID int64) (*model.Report, error)

	createCalls int
	setCalls    int
}

func (m *mockReportRepo) CreateReport(ctx context.Context, report *model.Report) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, report)
	}
	report.ID = 1
	report.Status = model.ReportPending
	return nil
}

func (m *mockReportRepo) SetReportStatus(ctx context.Context, id int64, status string, reviewerID int64) (*model.Report, error) {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, id, status, reviewerID)
	}
	return &model.Report{ID: id, Status: status, ReviewedBy: &reviewerID}, nil
}

func (m *mockReportRepo) ListReports(context.Context) ([]model.ReportDetail, error) {
	return []model.ReportDetail{}, nil
}

// failingStore simulates an object-storage outage.
type failingStore struct {
	err error
}

func (f *failingStore) Store(context.Context, string, []byte, string, int64) (string, error) {
	return "", f.err
}
