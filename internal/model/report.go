package model

import "time"

// Report statuses. A report starts as pending and moves through the other
// three under admin review.
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// ValidReportStatus reports whether s is one of the four allowed statuses.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Report is an abuse report against exactly one post or one comment.
// PostID and CommentID are mutually exclusive; the service validates this
// before any write and the schema carries a CHECK constraint as a backstop.
// A reporter may report a given target at most once.
type Report struct {
	ID          int64      `json:"id"`
	ReporterID  int64      `json:"reporterId"`
	PostID      *int64     `json:"postId,omitempty"`
	CommentID   *int64     `json:"commentId,omitempty"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  *int64     `json:"reviewedBy,omitempty"`
}

// ReportDetail is the admin list row: a report joined with its reporter's
// name and whichever target it points at.
type ReportDetail struct {
	Report
	ReporterName string  `json:"reporterName"`
	PostTitle    *string `json:"postTitle,omitempty"`
	CommentText  *string `json:"commentText,omitempty"`
}
