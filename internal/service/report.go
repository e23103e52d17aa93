package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/guard"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// ReportService runs the abuse-report workflow: filing by any authenticated
// user, review by admins.
type ReportService struct {
	reports  repository.ReportRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewReportService(
	reports repository.ReportRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{reports: reports, posts: posts, comments: comments, users: users, logger: logger}
}

// File records a report against exactly one post or one comment. The target
// must exist, the description must not be blank, and a reporter gets one
// report per target — a repeat fails with ErrDuplicate and writes nothing.
func (s *ReportService) File(ctx context.Context, reporterID int64, postID, commentID *int64, description string) (*model.Report, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "report description is required")
	}
	if (postID == nil) == (commentID == nil) {
		return nil, apperror.ValidationFailed("target", "report exactly one post or one comment")
	}

	if postID != nil {
		if _, err := s.posts.GetPostByID(ctx, *postID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.comments.GetCommentByID(ctx, *commentID); err != nil {
			return nil, err
		}
	}

	report := &model.Report{
		ReporterID:  reporterID,
		PostID:      postID,
		CommentID:   commentID,
		Description: description,
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report filed",
		slog.Int64("id", report.ID),
		slog.Int64("reporterId", reporterID),
	)
	return report, nil
}

// SetStatus records an admin's decision on a report.
func (s *ReportService) SetStatus(ctx context.Context, actingID, reportID int64, status string) (*model.Report, error) {
	acting, err := s.users.GetUserByID(ctx, actingID)
	if err != nil {
		return nil, err
	}
	if err := guard.Admin(acting); err != nil {
		return nil, err
	}

	if !model.ValidReportStatus(status) {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of %s, %s, %s, %s",
				model.ReportPending, model.ReportReviewed, model.ReportResolved, model.ReportDismissed))
	}

	report, err := s.reports.SetReportStatus(ctx, reportID, status, actingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("report status set",
		slog.Int64("id", reportID),
		slog.String("status", status),
		slog.Int64("reviewerId", actingID),
	)
	return report, nil
}

// List returns every report for the admin review queue, newest first.
func (s *ReportService) List(ctx context.Context, actingID int64) ([]model.ReportDetail, error) {
	acting, err := s.users.GetUserByID(ctx, actingID)
	if err != nil {
		return nil, err
	}
	if err := guard.Admin(acting); err != nil {
		return nil, err
	}
	return s.reports.ListReports(ctx)
}
