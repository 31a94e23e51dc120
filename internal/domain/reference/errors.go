package reference

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedInputType is returned when a code value is not a string,
	// a number, or a list.
	ErrUnsupportedInputType = errors.New("unsupported input type for sanitation")

	// ErrAmbiguousCodeCount is matched by *CodeCountError.
	ErrAmbiguousCodeCount = errors.New("ambiguous code count")

	// ErrStorage is matched by *StorageError.
	ErrStorage = errors.New("reference store error")

	// ErrNotFound is returned by name lookups that miss. Callers treat it as
	// "no enrichment".
	ErrNotFound = errors.New("condition not found")
)

// CodeCountError reports that a lookup received a number of codes other than one.
type CodeCountError struct {
	Count int
}

func (e *CodeCountError) Error() string {
	return fmt.Sprintf("%d SNOMED codes provided. Provide only one SNOMED code.", e.Count)
}

func (e *CodeCountError) Is(target error) bool {
	return target == ErrAmbiguousCodeCount
}

// StorageError wraps a failure of the underlying reference store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("an SQL error occurred during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
