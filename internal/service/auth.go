package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/repository"
)

// AuthService turns a provider-verified identity into a local account and a
// session token. The identity protocol itself lives in the auth package;
// this layer only owns the account rules.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login upserts the account by the provider-verified email and mints a
// session token. Suspended and banned accounts cannot start sessions.
func (s *AuthService) Login(ctx context.Context, profile *auth.Profile) (*model.User, string, error) {
	if profile == nil || profile.Email == "" {
		return nil, "", apperror.Unauthorized("identity provider returned no email")
	}

	user := &model.User{
		Email:       profile.Email,
		DisplayName: profile.Name,
		AvatarURL:   profile.AvatarURL,
	}
	if err := s.users.UpsertUserByEmail(ctx, user); err != nil {
		s.logger.Error("login upsert failed", slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("logging in: %w", err)
	}

	switch user.Status {
	case model.StatusSuspended, model.StatusBanned:
		return nil, "", apperror.Forbidden("this account has been suspended")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("userId", user.ID))
	return user, token, nil
}
