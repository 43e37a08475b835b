package database

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports a lookup that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports a unique constraint violation. It relies on the
// connection being opened with TranslateError enabled.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
