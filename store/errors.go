package store

import (
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/transcriptkit/errors"
)

// fromDatabase converts a GORM error into an AppError.
func fromDatabase(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound(resource, id)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Conflict(fmt.Sprintf("A %s with id %s already exists.", resource, id)).WithCause(err)
	default:
		return errors.DatabaseError(err).WithDetail("resource", resource)
	}
}
