package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/service"
)

// ReportHandler exposes the abuse-report workflow. Filing is open to any
// authenticated user; listing and review are admin-only (enforced in the
// service).
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

type fileReportRequest struct {
	PostID      *int64 `json:"postId"`
	CommentID   *int64 `json:"commentId"`
	Description string `json:"description"`
}

// HandleFile records a report against one post or one comment.
//
// POST /api/reports
func (h *ReportHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req fileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	report, err := h.reports.File(r.Context(), userID, req.PostID, req.CommentID, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// HandleList returns the review queue, newest first.
//
// GET /api/reports
func (h *ReportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	reports, err := h.reports.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

type setReportStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus records a review decision.
//
// PATCH /api/reports/{id}
func (h *ReportHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	reportID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req setReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	report, err := h.reports.SetStatus(r.Context(), userID, reportID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
