package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParent is returned when a structural operation references a
// parent that does not exist or would create a cycle.
var ErrInvalidParent = errors.New("invalid parent")

// ErrLocked is returned when a mutation targets a locked block or a block inside a locked parent.
var ErrLocked = errors.New("block is locked")

// ErrNotFound is returned by lookups for a missing block or page.
// Mutations on missing ids are no-ops and do not return it.
var ErrNotFound = errors.New("not found")

// ErrProjectNotFound is returned when a project id cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrVersionNotFound is returned when a version id cannot be found.
var ErrVersionNotFound = errors.New("version not found")

// ErrUnauthorized is returned by stores that refuse access to a project.
var ErrUnauthorized = errors.New("unauthorized")

// ErrPersistence marks a failed save, load or version operation.
var ErrPersistence = errors.New("persistence failure")

// ErrImportValidation marks externally supplied data that failed shape validation.
var ErrImportValidation = errors.New("import validation failed")

// PersistenceError wraps a backend failure with the operation that caused it.
type PersistenceError struct {
	Op        string
	ProjectID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPersistence) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
