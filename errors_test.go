package quarry_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarrydev/quarry"
)

func TestUnknownFieldError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := quarry.NewUnknownFieldError("function", "arity")
		assert.Equal(t, `quarry: unknown field "arity" on function`, err.Error())
	})

	t.Run("ErrorNoEntity", func(t *testing.T) {
		err := quarry.NewUnknownFieldError("", "arity")
		assert.Equal(t, `quarry: unknown field "arity"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewUnknownFieldError("module", "size")
		assert.True(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsUnknownField", func(t *testing.T) {
		err := quarry.NewUnknownFieldError("type", "kind")
		assert.True(t, quarry.IsUnknownField(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsUnknownField(wrapped))

		// Non-matching error
		assert.False(t, quarry.IsUnknownField(errors.New("other error")))
		assert.False(t, quarry.IsUnknownField(nil))
	})
}

func TestUnknownRelationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := quarry.NewUnknownRelationError("module", "constructor")
		assert.Equal(t, "quarry: no relation from module to constructor", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewUnknownRelationError("function", "trait")
		assert.True(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsUnknownRelation", func(t *testing.T) {
		err := quarry.NewUnknownRelationError("import", "field")
		assert.True(t, quarry.IsUnknownRelation(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsUnknownRelation(wrapped))

		assert.False(t, quarry.IsUnknownRelation(errors.New("other error")))
		assert.False(t, quarry.IsUnknownRelation(nil))
	})
}

func TestUnsupportedOperatorError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := quarry.NewUnsupportedOperatorError("regex")
		assert.Equal(t, `quarry: unsupported operator "regex"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewUnsupportedOperatorError("xor")
		assert.True(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsUnsupportedOperator", func(t *testing.T) {
		err := quarry.NewUnsupportedOperatorError("regex")
		assert.True(t, quarry.IsUnsupportedOperator(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsUnsupportedOperator(wrapped))

		assert.False(t, quarry.IsUnsupportedOperator(errors.New("other error")))
		assert.False(t, quarry.IsUnsupportedOperator(nil))
	})
}

func TestTypeMismatchError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := quarry.NewTypeMismatchError("in", "name", "list", "main")
		assert.Equal(t, `quarry: operator "in" on field "name": want list, got string`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewTypeMismatchError("between", "line_number_start", "two-element list", 5)
		assert.True(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsTypeMismatch", func(t *testing.T) {
		err := quarry.NewTypeMismatchError("gt", "id", "ordered value", nil)
		assert.True(t, quarry.IsTypeMismatch(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsTypeMismatch(wrapped))

		assert.False(t, quarry.IsTypeMismatch(errors.New("other error")))
		assert.False(t, quarry.IsTypeMismatch(nil))
	})
}

func TestUnknownPatternKindError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := quarry.NewUnknownPatternKindError("data_flow")
		assert.Equal(t, `quarry: unknown pattern kind "data_flow"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewUnknownPatternKindError("data_flow")
		assert.True(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsUnknownPatternKind", func(t *testing.T) {
		err := quarry.NewUnknownPatternKindError("control_flow")
		assert.True(t, quarry.IsUnknownPatternKind(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsUnknownPatternKind(wrapped))

		assert.False(t, quarry.IsUnknownPatternKind(errors.New("other error")))
		assert.False(t, quarry.IsUnknownPatternKind(nil))
	})
}

func TestStoreUnavailableError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := quarry.NewStoreUnavailableError("fetch_all", cause)
		assert.Equal(t, "quarry: store unavailable during fetch_all: connection refused", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := quarry.NewStoreUnavailableError("fetch_by_id", cause)
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("Is", func(t *testing.T) {
		err := quarry.NewStoreUnavailableError("fetch_by_parent", errors.New("timeout"))
		assert.True(t, errors.Is(err, quarry.ErrStoreUnavailable))
		assert.False(t, errors.Is(err, quarry.ErrInvalidDescriptor))
	})

	t.Run("IsStoreUnavailable", func(t *testing.T) {
		err := quarry.NewStoreUnavailableError("fetch_all", errors.New("timeout"))
		assert.True(t, quarry.IsStoreUnavailable(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, quarry.IsStoreUnavailable(wrapped))

		// Sentinel error
		assert.True(t, quarry.IsStoreUnavailable(quarry.ErrStoreUnavailable))

		assert.False(t, quarry.IsStoreUnavailable(errors.New("other error")))
		assert.False(t, quarry.IsStoreUnavailable(nil))
	})
}

func TestIsDescriptorError(t *testing.T) {
	descriptorErrs := []error{
		quarry.NewUnknownFieldError("function", "arity"),
		quarry.NewUnknownRelationError("module", "constructor"),
		quarry.NewUnsupportedOperatorError("regex"),
		quarry.NewTypeMismatchError("in", "name", "list", 1),
		quarry.NewUnknownPatternKindError("data_flow"),
	}
	for _, err := range descriptorErrs {
		assert.True(t, quarry.IsDescriptorError(err), "expected descriptor error: %v", err)
	}

	assert.False(t, quarry.IsDescriptorError(quarry.NewStoreUnavailableError("fetch_all", errors.New("down"))))
	assert.False(t, quarry.IsDescriptorError(nil))
}
