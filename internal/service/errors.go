package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrReference  = errors.New("referenced record does not exist")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports invalid input per field. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError holding a single field.
func NewValidationError(field, reason string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, reason)
	return v
}

// Add records reason for field, keeping the first reason reported.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// lookupError maps a repository read failure for entity/id onto ErrNotFound.
func lookupError(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return err
}

// deleteError additionally reports rows still referenced by tasks as conflicts.
func deleteError(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%s %d is still referenced by tasks: %w", entity, id, ErrConflict)
	}
	return lookupError(err, entity, id)
}
