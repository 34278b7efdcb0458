package envtree

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	// ErrMissingValue indicates a required field had neither a default nor an
	// environment override.
	ErrMissingValue = errors.New("missing value")
	// ErrImmutableField indicates an attempt to assign to a resolved field.
	ErrImmutableField = errors.New("immutable field")
	// ErrInvalidOption indicates a resolution option outside its allowed type or range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrNotInitialized is returned by Handle.Get before a successful Init.
	ErrNotInitialized = errors.New("handle not initialized")
	// ErrBind wraps every failure reported by Bind.
	ErrBind = errors.New("bind")
)

// MissingValueError reports a field with a null default and no environment
// override while require_value was enabled.
type MissingValueError struct {
	Path string // dotted path of the field, e.g. "section.var_c"
	Key  string // environment key that was looked up
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("no value for '%s' (env %s)", e.Path, e.Key)
}

func (e *MissingValueError) Is(target error) bool { return target == ErrMissingValue }

// ImmutableFieldError reports an assignment to a field of a resolved Tree.
type ImmutableFieldError struct {
	Path string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("'%s' is immutable", e.Path)
}

func (e *ImmutableFieldError) Is(target error) bool { return target == ErrImmutableField }

// InvalidOptionError reports an option value of the wrong type or out of range.
type InvalidOptionError struct {
	Option string
	Value  any
	Err    error
}

func (e *InvalidOptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid option %s=%v: %v", e.Option, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid option %s=%v", e.Option, e.Value)
}

func (e *InvalidOptionError) Is(target error) bool { return target == ErrInvalidOption }

func (e *InvalidOptionError) Unwrap() error { return e.Err }
