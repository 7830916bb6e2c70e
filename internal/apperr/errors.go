// Package apperr defines the error taxonomy shared by the rename engine and
// its surfaces.
package apperr

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation failed")
	ErrParse         = errors.New("parse failed")
	ErrFileOperation = errors.New("file operation failed")
)

// ValidationError reports bad caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation returns a *ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseError reports that a single filename could not be parsed. It is
// always recoverable by skipping the file.
type ParseError struct {
	Filename string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Filename, e.Reason)
}

// Is makes errors.Is(err, ErrParse) hold.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// FileOperationError reports a failed filesystem mutation. Index is the
// position of the failing entry in its batch, or -1 when not applicable.
type FileOperationError struct {
	Op     string
	Source string
	Target string
	Index  int
	Err    error
}

func (e *FileOperationError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Source, e.Target, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFileOperation) hold.
func (e *FileOperationError) Is(target error) bool { return target == ErrFileOperation }

// FromRules converts an ozzo-validation result into a *ValidationError for
// the first failing field (in name order). nil stays nil.
func FromRules(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return Validation("", err.Error())
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Validation(keys[0], errs[keys[0]].Error())
}
