package pgframe

import (
	"errors"
	"fmt"
)

var (
	// ErrTableDoesNotExist is returned when the requested table does not exist
	ErrTableDoesNotExist = errors.New("Table does not exist")
	ErrTableAlreadyExists = errors.New("Table already exists")
	// ErrColumnDoesNotExist is returned when the requested column does not exist
	ErrColumnDoesNotExist = errors.New("Column does not exist")
	// ErrDuplicateKey is returned on a primary key collision without a
	// conflict clause
	ErrDuplicateKey = errors.New("Duplicate key value violates unique constraint")
	// ErrMismatchedColumns is returned when columns of a frame or a bulk
	// parameter set do not share one length
	ErrMismatchedColumns = errors.New("Columns must have the same length")
	ErrDuplicateColumn = errors.New("Duplicate column name")
	ErrEmptyFrame      = errors.New("Frame has no columns")
	// ErrInvalidIdentifier is returned when a relation or column name is not
	// a valid SQL identifier
	ErrInvalidIdentifier = errors.New("Invalid identifier")
	// ErrInvalidOperands is returned when, while comparison, the LHS and RHS
	// are not of the same type
	ErrInvalidOperands = errors.New("Operands are invalid")
	ErrKeyColumns      = errors.New("Key columns must be a subset of the frame columns")
)

// BindError is returned when a named placeholder cannot be resolved against
// the supplied arguments, or an argument has no placeholder to land in.
type BindError struct {
	Name string
	Msg  string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %q: %s", e.Name, e.Msg)
}

// MaterializeError is returned when a result cell does not coerce to its
// column's type.
type MaterializeError struct {
	Column string
	Msg    string
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materialize column %q: %s", e.Column, e.Msg)
}
