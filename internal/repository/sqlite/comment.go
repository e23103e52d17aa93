package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

// CreateComment has the same transactional shape as post Create, one level
// down: comment row plus its image and code children, all or nothing.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment, imageURLs []string, codes []string) error {
	comment.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO comments (post_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`,
			comment.PostID, comment.AuthorID, comment.Text, comment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting comment: %w", err)
		}
		comment.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading comment id: %w", err)
		}

		for _, url := range imageURLs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO comment_images (comment_id, url, created_at) VALUES (?, ?, ?)`,
				comment.ID, url, comment.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting comment image: %w", err)
			}
		}
		for _, code := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO comment_codes (comment_id, code, created_at) VALUES (?, ?, ?)`,
				comment.ID, code, comment.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting comment code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

// ListCommentsForPost returns author-enriched comments for a post, newest first.
// Child collections are intentionally absent — the assembler batches them
// with ListCommentImagesFor/ListCommentCodesFor.
func (db *DB) ListCommentsForPost(ctx context.Context, postID int64) ([]model.CommentDetail, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
		        COALESCE(u.display_name, ''), COALESCE(u.avatar_url, '')
		 FROM comments c LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.CommentDetail{}
	for rows.Next() {
		var c model.CommentDetail
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&c.AuthorName, &c.AuthorAvatar,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		c.Images = []model.CommentImage{}
		c.Codes = []model.CommentCode{}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// ListCommentImagesFor batches the image children of many comments into a single
// IN query — one round trip no matter how many comments a post has.
func (db *DB) ListCommentImagesFor(ctx context.Context, commentIDs []int64) ([]model.CommentImage, error) {
	if len(commentIDs) == 0 {
		return []model.CommentImage{}, nil
	}
	query := `SELECT id, comment_id, url, created_at FROM comment_images
	          WHERE comment_id IN (` + placeholders(len(commentIDs)) + `) ORDER BY id`
	rows, err := db.conn.QueryContext(ctx, query, int64Args(commentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comment images: %w", err)
	}
	defer rows.Close()

	images := []model.CommentImage{}
	for rows.Next() {
		var img model.CommentImage
		if err := rows.Scan(&img.ID, &img.CommentID, &img.URL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment images: %w", err)
	}
	return images, nil
}

// ListCommentCodesFor batches the code children of many comments, same as
// ListCommentImagesFor.
func (db *DB) ListCommentCodesFor(ctx context.Context, commentIDs []int64) ([]model.CommentCode, error) {
	if len(commentIDs) == 0 {
		return []model.CommentCode{}, nil
	}
	query := `SELECT id, comment_id, code, created_at FROM comment_codes
	          WHERE comment_id IN (` + placeholders(len(commentIDs)) + `) ORDER BY id`
	rows, err := db.conn.QueryContext(ctx, query, int64Args(commentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comment codes: %w", err)
	}
	defer rows.Close()

	codes := []model.CommentCode{}
	for rows.Next() {
		var c model.CommentCode
		if err := rows.Scan(&c.ID, &c.CommentID, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment codes: %w", err)
	}
	return codes, nil
}

// GetCommentByID retrieves a single comment row, for report-target checks.
func (db *DB) GetCommentByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, author_id, text, created_at FROM comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return &c, nil
}
