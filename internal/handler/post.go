package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/service"
)

// PostHandler exposes the post aggregate over HTTP. Writes take multipart
// forms (text fields plus image files); reads return assembled JSON.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleCreate creates a post with images and code blocks.
//
// POST /api/posts (multipart)
//
//	title, text, categoryId — scalar fields
//	images                  — zero or more files
//	codes                   — repeated field or JSON array of strings
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request must be multipart form data"))
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		writeError(w, apperror.ValidationFailed("categoryId", "categoryId must be a positive integer"))
		return
	}
	images, err := formUploads(r, "images")
	if err != nil {
		writeError(w, err)
		return
	}
	codes, err := formStringList(r, "codes")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, service.CreatePostInput{
		CategoryID: categoryID,
		Title:      r.FormValue("title"),
		Body:       r.FormValue("text"),
		Images:     images,
		Codes:      codes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleGet returns the assembled post detail.
//
// GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.posts.GetDetail(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleList returns post summaries, newest first.
//
// GET /api/posts?categoryId=&limit=&offset=
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("categoryId"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	posts, err := h.posts.List(r.Context(), categoryID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleEdit applies an edit to the caller's own post and returns a summary
// of what changed.
//
// PUT /api/posts/{id} (multipart)
//
//	title, text, categoryId — optional scalar fields (absent = unchanged)
//	keepImageIds, deleteImageIds — JSON arrays of ids
//	newImages               — zero or more files
//	keepCodes               — JSON array of {id, code} updates
//	deleteCodeIds           — JSON array of ids
//	newCodes                — JSON array of strings
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request must be multipart form data"))
		return
	}

	in := service.EditPostInput{
		Title: formOptionalString(r, "title"),
		Body:  formOptionalString(r, "text"),
	}
	if raw := formOptionalString(r, "categoryId"); raw != nil {
		categoryID, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil || categoryID <= 0 {
			writeError(w, apperror.ValidationFailed("categoryId", "categoryId must be a positive integer"))
			return
		}
		in.CategoryID = &categoryID
	}
	if in.KeepImageIDs, err = formIDList(r, "keepImageIds"); err != nil {
		writeError(w, err)
		return
	}
	if in.DeleteImageIDs, err = formIDList(r, "deleteImageIds"); err != nil {
		writeError(w, err)
		return
	}
	if in.NewImages, err = formUploads(r, "newImages"); err != nil {
		writeError(w, err)
		return
	}
	if in.CodeUpdates, err = formCodeUpdates(r, "keepCodes"); err != nil {
		writeError(w, err)
		return
	}
	if in.DeleteCodeIDs, err = formIDList(r, "deleteCodeIds"); err != nil {
		writeError(w, err)
		return
	}
	if in.NewCodes, err = formStringList(r, "newCodes"); err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.posts.Edit(r.Context(), userID, postID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleDelete removes the caller's own post and its whole subtree.
//
// DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), userID, postID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
