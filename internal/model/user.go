// Package model defines the data structures used throughout the application.
package model

import "time"

// Role values for User.Role.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Status values for User.Status.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
	StatusPending   = "pending"
)

// User represents an account created from the external identity provider.
//
// The provider owns credentials and token issuance; we only keep a local row
// keyed by the unique email so posts and comments have a stable integer
// author id. The row is created on first successful login and never hard
// deleted — moderation flips Status (and rewrites DisplayName) instead.
//
// WHY Email AS THE EXTERNAL KEY?
// The provider's subject identifier is opaque and provider-specific. Email is
// what every provider returns and what the original data model keys on, so
// the UNIQUE constraint lives there. Changing providers keeps accounts intact.
type User struct {
	ID          int64     `json:"id"          db:"id"`
	Email       string    `json:"email"       db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Role        string    `json:"role"        db:"role"`
	Status      string    `json:"status"      db:"status"`
	AvatarURL   string    `json:"avatarUrl"   db:"avatar_url"` // empty when the user has no avatar
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// IsAdmin reports whether the user may perform moderation actions.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
