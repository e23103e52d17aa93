package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/guard"
	"github.com/sakif/devforum/internal/mediastore"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

const mediaKindAvatar = "avatars"

// ProfileService covers the user's own profile plus the admin moderation
// write on accounts.
type ProfileService struct {
	users  repository.UserRepository
	media  mediastore.Store
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, media mediastore.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, media: media, logger: logger}
}

// Get returns a user's public profile.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// Update changes the caller's own display name and/or avatar. A new avatar
// goes through object storage first.
func (s *ProfileService) Update(ctx context.Context, actingID int64, displayName *string, avatar *Upload) (*model.User, error) {
	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		if name == "" {
			return nil, apperror.ValidationFailed("displayName", "display name cannot be blank")
		}
		if len(name) > MaxDisplayNameLength {
			return nil, apperror.ValidationFailed("displayName",
				fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
		}
		displayName = &name
	}

	var avatarURL *string
	if avatar != nil {
		if len(avatar.Data) == 0 {
			return nil, apperror.ValidationFailed("avatar", "empty avatar upload")
		}
		if len(avatar.Data) > MaxImageBytes {
			return nil, apperror.ValidationFailed("avatar",
				fmt.Sprintf("avatar exceeds %d bytes", MaxImageBytes))
		}
		url, err := s.media.Store(ctx, mediaKindAvatar, avatar.Data, avatar.ContentType, actingID)
		if err != nil {
			s.logger.Error("avatar upload failed",
				slog.Int64("userId", actingID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		avatarURL = &url
	}

	user, err := s.users.UpdateProfile(ctx, actingID, displayName, avatarURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.Int64("userId", actingID))
	return user, nil
}

// Suspend is the moderation write: an admin sets the account status and the
// display name collapses to an anonymous placeholder. Accounts are never
// hard-deleted, so authored content keeps a stable author id.
func (s *ProfileService) Suspend(ctx context.Context, actingID, targetID int64, status string) error {
	acting, err := s.users.GetUserByID(ctx, actingID)
	if err != nil {
		return err
	}
	if err := guard.Admin(acting); err != nil {
		return err
	}

	switch status {
	case model.StatusSuspended, model.StatusBanned, model.StatusInactive, model.StatusActive:
	default:
		return apperror.ValidationFailed("status", "invalid account status")
	}

	// The placeholder sticks even on reactivation; the user renames
	// themselves through a profile update.
	displayName := fmt.Sprintf("user-%d", targetID)
	if err := s.users.SetUserStatus(ctx, targetID, status, displayName); err != nil {
		return err
	}

	s.logger.Info("user status set",
		slog.Int64("userId", targetID),
		slog.String("status", status),
		slog.Int64("byId", actingID),
	)
	return nil
}
