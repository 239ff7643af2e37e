package persistence

import (
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error to the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// createError maps a failed insert. A duplicate on a table with a document
// number means two writers picked the same number, which is retryable.
func createError(err error, numbered bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if numbered {
			return shared.ErrSequenceConflict
		}
		return shared.ErrAlreadyExists
	}
	return err
}
