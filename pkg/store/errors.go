package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFolder indicates an empty or malformed folder handle.
	ErrInvalidFolder = errors.New("invalid folder handle")
	// ErrEmptyName indicates an empty folder or file name.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrInvalidName indicates a name that is not a single path segment.
	ErrInvalidName = errors.New("name contains invalid path segment")
	// ErrNotFound indicates the requested file or folder does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrConflict indicates an item with the same name already exists.
	ErrConflict = errors.New("item name already in use")
	// ErrUnsupportedFormat indicates text cannot be extracted from the file type.
	ErrUnsupportedFormat = errors.New("unsupported file format for text extraction")
	// ErrUnresolved indicates a folder could not be found or created.
	ErrUnresolved = errors.New("folder could not be resolved")
)

// ConflictError reports a create that lost to an existing item. ExistingID carries the
// winner's handle when the backend supplied it in the conflict response.
type ConflictError struct {
	Name       string
	ExistingID FolderID
	Err        error
}

func (e *ConflictError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("%s %q (existing id %s)", ErrConflict, e.Name, e.ExistingID)
	}
	return fmt.Sprintf("%s %q", ErrConflict, e.Name)
}

func (e *ConflictError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConflict, e.Err}
	}
	return []error{ErrConflict}
}
