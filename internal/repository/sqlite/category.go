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
	"github.com/sakif/devforum/internal/repository"
)

// compile-time check that *DB implements repository.CategoryRepository
var _ repository.CategoryRepository = (*DB)(nil)

// CreateCategory inserts a category. Names are unique; a clash maps to
// apperror.ErrConflict so the handler can answer 409.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	category.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (name, created_by, created_at) VALUES (?, ?, ?)`,
		category.Name, category.CreatedBy, category.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Duplicate(fmt.Sprintf("category %q already exists", category.Name))
		}
		return fmt.Errorf("sqlite: inserting category: %w", err)
	}
	category.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading category id: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category row.
func (db *DB) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %d: %w", id, err)
	}
	return &c, nil
}

// ListCategories returns every category ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, created_by, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes the category and everything under it in one
// transaction: for each post in the category the full post cascade runs
// (comment children, comments, post children, post), then the category row
// goes last.
func (db *DB) DeleteCategory(ctx context.Context, id int64) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var exists int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, id).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("category", id)
			}
			return fmt.Errorf("checking category %d: %w", id, err)
		}

		rows, err := tx.QueryContext(ctx, `SELECT id FROM posts WHERE category_id = ?`, id)
		if err != nil {
			return fmt.Errorf("listing posts in category %d: %w", id, err)
		}
		postIDs := []int64{}
		for rows.Next() {
			var postID int64
			if err := rows.Scan(&postID); err != nil {
				rows.Close()
				return fmt.Errorf("scanning post id: %w", err)
			}
			postIDs = append(postIDs, postID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterating post ids: %w", err)
		}
		rows.Close()

		for _, postID := range postIDs {
			if err := deletePostCascade(ctx, tx, postID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting category %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("sqlite: deleting category: %w", err)
	}
	return nil
}
