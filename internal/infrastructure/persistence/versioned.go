package persistence

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// saveVersioned writes columns of the row whose id and version match the
// root, then bumps the root's version. The stored version is part of the
// WHERE clause, so of two writers holding the same version exactly one
// succeeds. On failure the root is left untouched.
func saveVersioned(db *gorm.DB, table any, root *shared.BaseAggregateRoot, columns func() map[string]any) error {
	expected := root.Version
	previousUpdate := root.UpdatedAt
	root.IncrementVersion()
	root.Touch()

	values := columns()
	values["version"] = root.Version
	values["updated_at"] = root.UpdatedAt

	result := db.Model(table).Where("id = ? AND version = ?", root.ID, expected).Updates(values)
	if result.Error == nil && result.RowsAffected == 1 {
		return nil
	}

	root.Version = expected
	root.UpdatedAt = previousUpdate
	if result.Error != nil {
		return result.Error
	}

	var count int64
	if err := db.Model(table).Where("id = ?", root.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrOptimisticLock
}
