package quarry

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common failure classes.
var (
	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached or fails mid-operation.
	ErrStoreUnavailable = errors.New("quarry: store unavailable")

	// ErrInvalidDescriptor is returned when a query or pattern descriptor
	// fails validation before evaluation.
	ErrInvalidDescriptor = errors.New("quarry: invalid descriptor")
)

// UnknownFieldError is returned when a condition names a field that does
// not exist on the entity type it is applied to.
type UnknownFieldError struct {
	Entity string // Entity type the condition targets
	Field  string // Field name that was not recognized
}

// Error returns the error string.
func (e *UnknownFieldError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("quarry: unknown field %q on %s", e.Field, e.Entity)
	}
	return fmt.Sprintf("quarry: unknown field %q", e.Field)
}

// Is reports whether the target error matches UnknownFieldError.
// This allows errors.Is(err, ErrInvalidDescriptor) to return true.
func (e *UnknownFieldError) Is(err error) bool {
	return err == ErrInvalidDescriptor
}

// NewUnknownFieldError returns a new UnknownFieldError for the given
// entity type and field name.
func NewUnknownFieldError(entity, field string) *UnknownFieldError {
	return &UnknownFieldError{Entity: entity, Field: field}
}

// IsUnknownField returns true if the error is an UnknownFieldError.
func IsUnknownField(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownFieldError
	return errors.As(err, &e)
}

// UnknownRelationError is returned when a join names a related entity type
// that has no declared relation to its parent.
type UnknownRelationError struct {
	Parent string // Parent entity type
	Child  string // Requested related entity type
}

// Error returns the error string.
func (e *UnknownRelationError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("quarry: no relation from %s to %s", e.Parent, e.Child)
	}
	return fmt.Sprintf("quarry: unknown relation %q", e.Child)
}

// Is reports whether the target error matches UnknownRelationError.
func (e *UnknownRelationError) Is(err error) bool {
	return err == ErrInvalidDescriptor
}

// NewUnknownRelationError returns a new UnknownRelationError for the
// given parent and requested child entity types.
func NewUnknownRelationError(parent, child string) *UnknownRelationError {
	return &UnknownRelationError{Parent: parent, Child: child}
}

// IsUnknownRelation returns true if the error is an UnknownRelationError.
func IsUnknownRelation(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownRelationError
	return errors.As(err, &e)
}

// UnsupportedOperatorError is returned when a condition uses an operator
// name outside the supported set.
type UnsupportedOperatorError struct {
	Operator string // Operator name as it appeared in the descriptor
}

// Error returns the error string.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("quarry: unsupported operator %q", e.Operator)
}

// Is reports whether the target error matches UnsupportedOperatorError.
func (e *UnsupportedOperatorError) Is(err error) bool {
	return err == ErrInvalidDescriptor
}

// NewUnsupportedOperatorError returns a new UnsupportedOperatorError.
func NewUnsupportedOperatorError(op string) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{Operator: op}
}

// IsUnsupportedOperator returns true if the error is an UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}

// TypeMismatchError is returned when an operator receives a comparison
// value whose shape it cannot evaluate, such as a scalar where a list
// is required.
type TypeMismatchError struct {
	Operator string // Operator being evaluated
	Field    string // Field the condition targets
	Want     string // Expected value shape
	Got      any    // Value that was supplied
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("quarry: operator %q on field %q: want %s, got %T", e.Operator, e.Field, e.Want, e.Got)
}

// Is reports whether the target error matches TypeMismatchError.
func (e *TypeMismatchError) Is(err error) bool {
	return err == ErrInvalidDescriptor
}

// NewTypeMismatchError returns a new TypeMismatchError.
func NewTypeMismatchError(op, field, want string, got any) *TypeMismatchError {
	return &TypeMismatchError{Operator: op, Field: field, Want: want, Got: got}
}

// IsTypeMismatch returns true if the error is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// UnknownPatternKindError is returned when a pattern descriptor names a
// pattern kind the matcher does not implement.
type UnknownPatternKindError struct {
	Kind string // Pattern kind as it appeared in the descriptor
}

// Error returns the error string.
func (e *UnknownPatternKindError) Error() string {
	return fmt.Sprintf("quarry: unknown pattern kind %q", e.Kind)
}

// Is reports whether the target error matches UnknownPatternKindError.
func (e *UnknownPatternKindError) Is(err error) bool {
	return err == ErrInvalidDescriptor
}

// NewUnknownPatternKindError returns a new UnknownPatternKindError.
func NewUnknownPatternKindError(kind string) *UnknownPatternKindError {
	return &UnknownPatternKindError{Kind: kind}
}

// IsUnknownPatternKind returns true if the error is an UnknownPatternKindError.
func IsUnknownPatternKind(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownPatternKindError
	return errors.As(err, &e)
}

// StoreUnavailableError wraps a failure from the backing store with the
// operation that was in flight.
type StoreUnavailableError struct {
	Op  string // Store operation (e.g., "fetch_all", "fetch_by_parent")
	Err error  // Underlying driver error
}

// Error returns the error string.
func (e *StoreUnavailableError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("quarry: store unavailable during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("quarry: store unavailable: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches StoreUnavailableError.
// This allows errors.Is(err, ErrStoreUnavailable) to return true.
func (e *StoreUnavailableError) Is(err error) bool {
	return err == ErrStoreUnavailable
}

// NewStoreUnavailableError returns a new StoreUnavailableError for the
// given store operation.
func NewStoreUnavailableError(op string, err error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Err: err}
}

// IsStoreUnavailable returns true if the error is a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var e *StoreUnavailableError
	return errors.As(err, &e) || errors.Is(err, ErrStoreUnavailable)
}

// IsDescriptorError returns true if the error reports an invalid query or
// pattern descriptor rather than a store failure.
func IsDescriptorError(err error) bool {
	return errors.Is(err, ErrInvalidDescriptor)
}
