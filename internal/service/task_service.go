package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description *string
	Completed   bool
	UserID      uint
	CategoryID  uint
}

// TaskPatch holds the fields of an update. Nil fields are left unchanged;
// ClearDescription stores NULL and wins over Description.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Completed        *bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	userRepo     *repository.UserRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, userRepo: userRepo, categoryRepo: categoryRepo}
}

// CreateTask persists a new task. The referenced user and category are checked
// by the database foreign keys; a violation is returned as ErrReference.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		verr.Add("title", "is required")
	}
	if input.UserID == 0 {
		verr.Add("userId", "is required")
	}
	if input.CategoryID == 0 {
		verr.Add("categoryId", "is required")
	}
	if !verr.empty() {
		return nil, verr
	}

	task := model.Task{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fmt.Errorf("%s: %w", s.missingReference(ctx, input), ErrReference)
		}
		return nil, err
	}
	return &task, nil
}

// missingReference names the reference that made an insert fail, for the
// error message only.
func (s *TaskService) missingReference(ctx context.Context, input TaskInput) string {
	if _, err := s.userRepo.GetByID(ctx, input.UserID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("userId %d", input.UserID)
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("categoryId %d", input.CategoryID)
	}
	return "userId or categoryId"
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.ListAll(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}
	return task, nil
}

// UpdateTask mutates only the fields present in patch.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, patch TaskPatch) (*model.Task, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, NewValidationError("title", "must not be empty")
		}
		updates["title"] = *patch.Title
	}
	switch {
	case patch.ClearDescription:
		updates["description"] = nil
	case patch.Description != nil:
		updates["description"] = *patch.Description
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	task, err := s.taskRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}
	return task, nil
}

// DeleteTask removes a task and returns it. Missing tasks yield ErrNotFound.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}
	return task, nil
}
