package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", translateError(err))
	}
	return nil
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("find category %d: %w", id, err)
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*model.Category, error) {
	category, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update category %d: %w", id, translateError(err))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the category unless tasks still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) (*model.Category, error) {
	category, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Category{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete category %d: %w", id, translateError(err))
	}
	return category, nil
}
