// Package services implements the board's identity, session and content rules
// on top of GORM. Every method returns *models.AppError for domain failures.
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/validation"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// invalid converts a validator violation into a domain error.
func invalid(err error) error {
	var v *validation.Violation
	if errors.As(err, &v) {
		return models.Validation(v.Code, v.Message)
	}
	return models.Internal(err)
}

// notFoundAs maps a missing row onto notFound and anything else onto an internal error.
func notFoundAs(err error, notFound *models.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return models.Internal(err)
}

// withAuthor lets preloads resolve authors whose accounts were soft-deleted and
// brings their profile image along.
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Scopes(withProfileImage)
}

// normalizePage clamps offset/limit pagination.
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit
}
