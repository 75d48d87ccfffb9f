package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the store could not be reached or refused the caller.
	ErrTransport = errors.New("transport error")
	// ErrValidation means the row was rejected by a constraint or by input checks.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// StoreError describes a failed data-store call. Kind is one of the sentinel
// errors above and is matched with errors.Is.
type StoreError struct {
	Op    string
	Table string
	Kind  error
	Err   error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewStoreError(op, table string, kind, err error) error {
	return &StoreError{Op: op, Table: table, Kind: kind, Err: err}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// Validationf builds an input error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
