package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task. A missing user or category surfaces as gorm.ErrForeignKeyViolated.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translateError(err))
	}
	return nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListOpenByUser returns the user's tasks that are not completed yet, oldest first.
func (r *TaskRepository) ListOpenByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, false).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

// Update applies the given column changes and returns the stored row.
func (r *TaskRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*model.Task, error) {
	task, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update task %d: %w", id, translateError(err))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the task and returns the row as it was before removal.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (*model.Task, error) {
	task, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete task %d: %w", id, err)
	}
	return task, nil
}
