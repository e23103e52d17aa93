package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// compile-time check that *DB implements repository.ReportRepository
var _ repository.ReportRepository = (*DB)(nil)

// CreateReport inserts the report unless the same reporter already has one
// open against the same target. The check and the insert share a transaction
// so two concurrent reports of the same thing cannot both land; the UNIQUE
// indexes on (reporter_id, post_id) and (reporter_id, comment_id) are the
// backstop.
func (db *DB) CreateReport(ctx context.Context, report *model.Report) error {
	report.Status = model.ReportPending
	report.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var existing int64
		var lookupErr error
		switch {
		case report.PostID != nil:
			lookupErr = tx.QueryRowContext(ctx,
				`SELECT id FROM reports WHERE reporter_id = ? AND post_id = ?`,
				report.ReporterID, *report.PostID,
			).Scan(&existing)
		case report.CommentID != nil:
			lookupErr = tx.QueryRowContext(ctx,
				`SELECT id FROM reports WHERE reporter_id = ? AND comment_id = ?`,
				report.ReporterID, *report.CommentID,
			).Scan(&existing)
		default:
			return apperror.ValidationFailed("target", "report needs a post or a comment")
		}
		if lookupErr == nil {
			return apperror.Duplicate("you have already reported this content")
		}
		if lookupErr != sql.ErrNoRows {
			return fmt.Errorf("checking for existing report: %w", lookupErr)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO reports (reporter_id, post_id, comment_id, description, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			report.ReporterID, report.PostID, report.CommentID,
			report.Description, report.Status, report.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting report: %w", err)
		}
		report.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading report id: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("sqlite: creating report: %w", err)
	}
	return nil
}

// SetReportStatus records a moderation decision: the new status plus who
// reviewed it and when. Returns the updated row.
func (db *DB) SetReportStatus(ctx context.Context, id int64, status string, reviewerID int64) (*model.Report, error) {
	now := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE reports SET status = ?, reviewed_at = ?, reviewed_by = ? WHERE id = ?`,
		status, now, reviewerID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating report %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("report", id)
	}

	var r model.Report
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, reporter_id, post_id, comment_id, description, status, created_at, reviewed_at, reviewed_by
		 FROM reports WHERE id = ?`,
		id,
	).Scan(
		&r.ID, &r.ReporterID, &r.PostID, &r.CommentID, &r.Description,
		&r.Status, &r.CreatedAt, &r.ReviewedAt, &r.ReviewedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reloading report %d: %w", id, err)
	}
	return &r, nil
}

// ListReports returns every report newest first, enriched with the reporter
// name and a snippet of the reported content. The joins are LEFT because the
// target may have been deleted since the report was filed — the report row
// survives with a null title/text.
func (db *DB) ListReports(ctx context.Context) ([]model.ReportDetail, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT r.id, r.reporter_id, r.post_id, r.comment_id, r.description,
		        r.status, r.created_at, r.reviewed_at, r.reviewed_by,
		        COALESCE(u.display_name, ''), p.title, c.text
		 FROM reports r
		 LEFT JOIN users u ON u.id = r.reporter_id
		 LEFT JOIN posts p ON p.id = r.post_id
		 LEFT JOIN comments c ON c.id = r.comment_id
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reports: %w", err)
	}
	defer rows.Close()

	reports := []model.ReportDetail{}
	for rows.Next() {
		var d model.ReportDetail
		if err := rows.Scan(
			&d.ID, &d.ReporterID, &d.PostID, &d.CommentID, &d.Description,
			&d.Status, &d.CreatedAt, &d.ReviewedAt, &d.ReviewedBy,
			&d.ReporterName, &d.PostTitle, &d.CommentText,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning report row: %w", err)
		}
		reports = append(reports, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}
	return reports, nil
}
