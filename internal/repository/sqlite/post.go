package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/reconcile"
	"github.com/sakif/devforum/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts the post row and every child row in one transaction.
// Image URLs arrive already uploaded; a failure on any insert rolls the
// whole aggregate back, so no child row can outlive a failed create.
func (db *DB) CreatePost(ctx context.Context, post *model.Post, imageURLs []string, codes []string) error {
	post.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO posts (author_id, category_id, title, body, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			post.AuthorID, post.CategoryID, post.Title, post.Body, post.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting post: %w", err)
		}
		post.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading post id: %w", err)
		}

		for _, url := range imageURLs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_images (post_id, url, created_at) VALUES (?, ?, ?)`,
				post.ID, url, post.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting post image: %w", err)
			}
		}

		for _, code := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_codes (post_id, code, created_at) VALUES (?, ?, ?)`,
				post.ID, code, post.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting post code: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

// GetPostByID retrieves the post row only — no children.
func (db *DB) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, author_id, category_id, title, body, created_at
		 FROM posts WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Body, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &p, nil
}

// EditPost applies a patch in one transaction. The child diffs are computed by
// the reconcile package against the rows as they exist inside this
// transaction, so a concurrent edit can't make a delete target another
// post's rows or double-apply. Counts reflect rows actually touched.
func (db *DB) EditPost(ctx context.Context, postID int64, patch repository.PostPatch) (*model.ChangeSummary, error) {
	var summary model.ChangeSummary

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		// Confirm the post still exists; a row can vanish between the
		// service's ownership check and this transaction.
		var exists int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("post", postID)
			}
			return fmt.Errorf("checking post %d: %w", postID, err)
		}

		if err := applyScalarPatch(ctx, tx, postID, patch); err != nil {
			return err
		}

		imageIDs, err := childIDs(ctx, tx, `SELECT id FROM post_images WHERE post_id = ?`, postID)
		if err != nil {
			return fmt.Errorf("loading image ids: %w", err)
		}
		img := reconcile.Images(imageIDs, patch.Images)
		for _, id := range img.ToDelete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM post_images WHERE id = ?`, id); err != nil {
				return fmt.Errorf("deleting image %d: %w", id, err)
			}
			summary.ImagesRemoved++
		}
		now := time.Now()
		for _, url := range patch.NewImageURLs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_images (post_id, url, created_at) VALUES (?, ?, ?)`,
				postID, url, now,
			); err != nil {
				return fmt.Errorf("inserting image: %w", err)
			}
			summary.ImagesAdded++
		}

		codeIDs, err := childIDs(ctx, tx, `SELECT id FROM post_codes WHERE post_id = ?`, postID)
		if err != nil {
			return fmt.Errorf("loading code ids: %w", err)
		}
		code := reconcile.Codes(codeIDs, patch.Codes)
		for _, id := range code.ToDelete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM post_codes WHERE id = ?`, id); err != nil {
				return fmt.Errorf("deleting code %d: %w", id, err)
			}
			summary.CodesRemoved++
		}
		for _, u := range code.ToUpdate {
			if _, err := tx.ExecContext(ctx,
				`UPDATE post_codes SET code = ? WHERE id = ?`, u.Code, u.ID,
			); err != nil {
				return fmt.Errorf("updating code %d: %w", u.ID, err)
			}
			summary.CodesUpdated++
		}
		for _, text := range code.ToInsert {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_codes (post_id, code, created_at) VALUES (?, ?, ?)`,
				postID, text, now,
			); err != nil {
				return fmt.Errorf("inserting code: %w", err)
			}
			summary.CodesAdded++
		}

		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: editing post %d: %w", postID, err)
	}

	return &summary, nil
}

// applyScalarPatch updates category/title/body where provided. Nil fields
// are left untouched.
func applyScalarPatch(ctx context.Context, tx *sql.Tx, postID int64, patch repository.PostPatch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Body != nil {
		sets = append(sets, "body = ?")
		args = append(args, *patch.Body)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, postID)
	query := "UPDATE posts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating post fields: %w", err)
	}
	return nil
}

// DeletePost cascades through the aggregate, innermost children first: comment
// images and codes, comments, post images and codes, then the post. One
// transaction — either everything goes or nothing does.
func (db *DB) DeletePost(ctx context.Context, postID int64) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		return deletePostCascade(ctx, tx, postID)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("sqlite: deleting post %d: %w", postID, err)
	}
	return nil
}

// deletePostCascade is shared with the category cascade in category.go.
func deletePostCascade(ctx context.Context, tx *sql.Tx, postID int64) error {
	var exists int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("post", postID)
		}
		return fmt.Errorf("checking post %d: %w", postID, err)
	}

	steps := []string{
		`DELETE FROM comment_images WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
		`DELETE FROM comment_codes  WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
		`DELETE FROM comments WHERE post_id = ?`,
		`DELETE FROM post_images WHERE post_id = ?`,
		`DELETE FROM post_codes WHERE post_id = ?`,
		`DELETE FROM posts WHERE id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, postID); err != nil {
			return fmt.Errorf("cascade step %q: %w", q, err)
		}
	}
	return nil
}

// ListPosts returns post summaries joined with the author's display name, newest
// first. categoryID = 0 means all categories.
func (db *DB) ListPosts(ctx context.Context, categoryID int64, opts repository.ListOptions) ([]model.PostSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT p.id, p.author_id, COALESCE(u.display_name, ''), p.category_id, p.title, p.created_at
	          FROM posts p LEFT JOIN users u ON u.id = p.author_id`
	args := []any{}
	if categoryID > 0 {
		query += ` WHERE p.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.PostSummary, 0, limit)
	for rows.Next() {
		var p model.PostSummary
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.CategoryID, &p.Title, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// ListPostImages returns a post's images, oldest first (upload order).
func (db *DB) ListPostImages(ctx context.Context, postID int64) ([]model.PostImage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, url, created_at FROM post_images WHERE post_id = ? ORDER BY id`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing post images: %w", err)
	}
	defer rows.Close()

	images := []model.PostImage{}
	for rows.Next() {
		var img model.PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post images: %w", err)
	}
	return images, nil
}

// ListPostCodes returns a post's code blocks, oldest first.
func (db *DB) ListPostCodes(ctx context.Context, postID int64) ([]model.PostCode, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, code, created_at FROM post_codes WHERE post_id = ? ORDER BY id`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing post codes: %w", err)
	}
	defer rows.Close()

	codes := []model.PostCode{}
	for rows.Next() {
		var c model.PostCode
		if err := rows.Scan(&c.ID, &c.PostID, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post codes: %w", err)
	}
	return codes, nil
}

// childIDs collects the ids a child-table query yields, inside the tx.
func childIDs(ctx context.Context, tx *sql.Tx, query string, parentID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
