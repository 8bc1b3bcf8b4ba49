package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// UserInput carries the fields of a user. On update nil fields are kept.
type UserInput struct {
	Name  *string
	Email *string
}

// UserService manages task owners.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*model.User, error) {
	verr := &ValidationError{}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		verr.Add("name", "is required")
	}
	if input.Email == nil || strings.TrimSpace(*input.Email) == "" {
		verr.Add("email", "is required")
	} else if !validEmail(*input.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if !verr.empty() {
		return nil, verr
	}

	user := model.User{Name: *input.Name, Email: strings.TrimSpace(*input.Email)}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, duplicateEmail(err, user.Email)
	}
	return &user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", id)
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, input UserInput) (*model.User, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if !validEmail(email) {
			return nil, NewValidationError("email", "must be a valid email address")
		}
		updates["email"] = email
	}

	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if input.Email != nil {
			err = duplicateEmail(err, strings.TrimSpace(*input.Email))
		}
		return nil, lookupError(err, "user", id)
	}
	return user, nil
}

// DeleteUser removes a user that no task references.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, deleteError(err, "user", id)
	}
	return user, nil
}

func duplicateEmail(err error, email string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("email %q already registered: %w", email, ErrConflict)
	}
	return err
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
