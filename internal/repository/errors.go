package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// translateError normalizes constraint failures the dialector left untranslated
// so callers can rely on the gorm sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", gorm.ErrForeignKeyViolated, msg)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", gorm.ErrDuplicatedKey, msg)
	}
	return err
}
