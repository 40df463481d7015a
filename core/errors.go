package core

import "github.com/pkg/errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("permission denied")
	ErrStoreConflict      = errors.New("could not serialize access due to a concurrent update")
)

// DuplicateKeyError reports a uniqueness violation on Field.
type DuplicateKeyError struct {
	Field   string
	Message string
}

func NewDuplicateKeyError(field, msg string) error {
	return &DuplicateKeyError{Field: field, Message: msg}
}

func (err *DuplicateKeyError) Error() string { return err.Message }

func (err *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (err *NotFoundError) Error() string { return err.Entity + " not found" }

func (err *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
