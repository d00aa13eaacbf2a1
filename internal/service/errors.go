// Package service contains business logic for posts, comments and their taxonomy.
package service

import (
	"errors"
	"fmt"

	"inkpost/internal/models"

	"gorm.io/gorm"
)

// notFoundOr translates a missing record into a NotFound AppError and wraps
// every other failure with action.
func notFoundOr(err error, resource string, id uint, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// unknownAuthor maps a foreign key failure to a validation error. Callers
// rule out every other foreign key first: link targets surface as
// repository.ErrStaleName and parent posts are looked up before the write.
func unknownAuthor(err error, action string) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return models.NewValidationError("Unknown author")
	}
	return fmt.Errorf("%s: %w", action, err)
}
