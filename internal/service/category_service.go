package service

import (
	"context"
	"strings"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "is required")
	}
	category := model.Category{Name: name}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListAll(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category", id)
	}
	return category, nil
}

// RenameCategory changes the category name. A nil name leaves the row as is.
func (s *CategoryService) RenameCategory(ctx context.Context, id uint, name *string) (*model.Category, error) {
	updates := map[string]interface{}{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		updates["name"] = *name
	}
	category, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, lookupError(err, "category", id)
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, deleteError(err, "category", id)
	}
	return category, nil
}
