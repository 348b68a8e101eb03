package store

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("store: document not found")
	// ErrVersionConflict is returned when a write's version token no longer
	// matches the stored document. The caller is expected to re-read and
	// retry the whole mutation.
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrDuplicateOpenOrder is returned when an insert would create a second
	// open order for the same table.
	ErrDuplicateOpenOrder = errors.New("store: open order already exists for table")
	// ErrDuplicateCode is returned when a generated order code collides.
	ErrDuplicateCode = errors.New("store: order code already exists")
)
