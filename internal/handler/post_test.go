package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository/sqlite"
	"github.com/sakif/devforum/internal/service"
)

// newTestRouter wires real services over a throwaway database and an
// in-memory media store, the same shape the server package builds.
func newTestRouter(t *testing.T) (chi.Router, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	media := mediastore.NewMemory()

	posts := service.NewPostService(db, db, db, db, media, logger)
	comments := service.NewCommentService(db, db, media, logger)

	postHandler := NewPostHandler(posts, logger)
	commentHandler := NewCommentHandler(comments, logger)

	r := chi.NewRouter()
	r.Post("/api/posts", postHandler.HandleCreate)
	r.Get("/api/posts", postHandler.HandleList)
	r.Get("/api/posts/{id}", postHandler.HandleGet)
	r.Put("/api/posts/{id}", postHandler.HandleEdit)
	r.Delete("/api/posts/{id}", postHandler.HandleDelete)
	r.Post("/api/posts/{id}/comments", commentHandler.HandleCreate)
	return r, db
}

func seedCategory(t *testing.T, db *sqlite.DB) *model.Category {
	t.Helper()
	cat := &model.Category{Name: "general", CreatedBy: 1}
	require.NoError(t, db.CreateCategory(context.Background(), cat))
	return cat
}

func seedAccount(t *testing.T, db *sqlite.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, DisplayName: "Tester"}
	require.NoError(t, db.UpsertUserByEmail(context.Background(), u))
	return u
}

// multipartBody builds a multipart form from scalar fields and in-memory
// image files.
func multipartBody(t *testing.T, fields map[string]string, imageField string, images ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i, img := range images {
		fw, err := mw.CreateFormFile(imageField, "img.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte(img))
		require.NoError(t, err, "image %d", i)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func asUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

func TestHandleCreate_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, map[string]string{"title": "t", "text": "b", "categoryId": "1"}, "images")
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreate_ThenGetDetail(t *testing.T) {
	router, db := newTestRouter(t)
	user := seedAccount(t, db, "tester@example.com")
	cat := seedCategory(t, db)

	fields := map[string]string{
		"title":      "Hello forum",
		"text":       "First post",
		"categoryId": strconv.FormatInt(cat.ID, 10),
		"codes":      `["print(1)","   "]`,
	}
	body, contentType := multipartBody(t, fields, "images", "fake-png-bytes")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/posts", body), user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Hello forum", created.Title)
	assert.NotZero(t, created.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/api/posts/"+strconv.FormatInt(created.ID, 10), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var detail model.PostDetail
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &detail))
	assert.Equal(t, "Tester", detail.AuthorName)
	assert.Equal(t, "general", detail.CategoryName)
	assert.Len(t, detail.Images, 1)
	// The blank code block must have been dropped at the boundary.
	assert.Len(t, detail.Codes, 1)
	assert.Equal(t, "print(1)", detail.Codes[0].Code)
	assert.Empty(t, detail.Comments)
}

func TestHandleEdit_NonOwnerGets403(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedAccount(t, db, "owner@example.com")
	other := seedAccount(t, db, "other@example.com")
	cat := seedCategory(t, db)

	post := &model.Post{AuthorID: owner.ID, CategoryID: cat.ID, Title: "t", Body: "b"}
	require.NoError(t, db.CreatePost(context.Background(), post, nil, nil))

	fields := map[string]string{"title": "hijacked"}
	body, contentType := multipartBody(t, fields, "newImages")
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/posts/"+strconv.FormatInt(post.ID, 10), body), other.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The post must be untouched.
	reloaded, err := db.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", reloaded.Title)
}

func TestHandleGet_UnknownPostGets404(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "not_found", errResp.Error)
}
