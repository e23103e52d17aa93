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

const MaxCategoryNameLength = 60

// CategoryService manages categories. Any authenticated user may create one;
// deletion is admin-only because it cascades through every post underneath.
type CategoryService struct {
	categories repository.CategoryRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, users repository.UserRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, users: users, logger: logger}
}

// Create adds a category with a unique name.
func (s *CategoryService) Create(ctx context.Context, actingID int64, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	category := &model.Category{Name: name, CreatedBy: actingID}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.Int64("id", category.ID),
		slog.String("name", name),
		slog.Int64("byId", actingID),
	)
	return category, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListCategories(ctx)
}

// Delete removes a category and every post under it. Admin only.
func (s *CategoryService) Delete(ctx context.Context, actingID, categoryID int64) error {
	acting, err := s.users.GetUserByID(ctx, actingID)
	if err != nil {
		return err
	}
	if err := guard.Admin(acting); err != nil {
		return err
	}

	if err := s.categories.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	s.logger.Info("category deleted", slog.Int64("id", categoryID), slog.Int64("byId", actingID))
	return nil
}
