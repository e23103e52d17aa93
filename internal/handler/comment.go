package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/service"
)

// CommentHandler exposes comments under a post.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleCreate adds a comment with images and code blocks.
//
// POST /api/posts/{id}/comments (multipart)
//
//	text   — comment body
//	images — zero or more files
//	codes  — repeated field or JSON array of strings
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	comment, err := h.comments.Create(r.Context(), userID, postID, service.CreateCommentInput{
		Text:   r.FormValue("text"),
		Images: images,
		Codes:  codes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleList returns a post's comments with children, newest first.
//
// GET /api/posts/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.comments.ListForPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
