package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// UpsertUserByEmail creates the local account row on first login or loads
// the existing one. The identity provider owns credentials; all we key on
// is the unique email.
//
// Unlike a blind INSERT OR REPLACE, an existing row keeps its id, role,
// status, and avatar — a returning user must not be reset to defaults just
// because they logged in again.
func (db *DB) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	user.Email = email

	var existing model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, display_name, role, status, avatar_url, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&existing.ID, &existing.Email, &existing.DisplayName, &existing.Role,
		&existing.Status, &existing.AvatarURL, &existing.CreatedAt, &existing.UpdatedAt,
	)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by email: %w", err)
	}

	if err == nil {
		*user = existing
		return nil
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleStudent
	}
	if user.Status == "" {
		user.Status = model.StatusActive
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, display_name, role, status, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.DisplayName, user.Role, user.Status, user.AvatarURL,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}
	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, display_name, role, status, avatar_url, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Status,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return &u, nil
}

// UpdateProfile updates display name and/or avatar; nil means leave as is.
// Returns the refreshed row.
func (db *DB) UpdateProfile(ctx context.Context, id int64, displayName, avatarURL *string) (*model.User, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if displayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *displayName)
	}
	if avatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *avatarURL)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now())
		args = append(args, id)

		res, err := db.conn.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating profile %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("user", id)
		}
	}

	return db.GetUserByID(ctx, id)
}

// SetUserStatus rewrites status and display name in one statement — the
// moderation path for suspend/disable. The row itself always survives.
func (db *DB) SetUserStatus(ctx context.Context, id int64, status, displayName string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET status = ?, display_name = ?, updated_at = ? WHERE id = ?`,
		status, displayName, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting status for user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
