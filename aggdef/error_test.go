package aggdef

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulego/setagg/types"
)

func TestDefinitionErrorFormat(t *testing.T) {
	e := newError(CodeVariadicNotLast, "myagg", "VARIADIC argument must be last")
	e.Position = 1
	e.Hint = "move the VARIADIC parameter to the end"

	msg := e.Error()
	assert.Contains(t, msg, "[VARIADIC_NOT_LAST]")
	assert.Contains(t, msg, "at argument 2")
	assert.Contains(t, msg, `aggregate "myagg"`)
	assert.Contains(t, msg, "\nHint: move the VARIADIC parameter to the end")
}

func TestDefinitionErrorWithoutPosition(t *testing.T) {
	e := newError(CodeNotFound, "myagg", "function f(int8) does not exist")
	assert.NotContains(t, e.Error(), "at argument")
	assert.NotContains(t, e.Error(), "Hint:")
}

func TestDefinitionErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := newError(CodeNameCollision, "a", "collision")
	e.cause = cause
	assert.True(t, errors.Is(e, cause))

	wrapped := fmt.Errorf("define: %w", e)
	code, ok := ErrorCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNameCollision, code)

	_, ok = ErrorCode(errors.New("plain"))
	assert.False(t, ok)
}

func TestCodeNames(t *testing.T) {
	// 每个错误码都有自己的名字，不会落到 UNKNOWN_ERROR
	codes := []Code{
		CodeIllegalCombination, CodeDuplicateVariadic, CodeVariadicNotLast,
		CodeOrderedVariadicMustBeAny, CodeVariadicNotArray,
		CodeInvalidHypotheticalShape, CodeInvalidOrderedSetShape,
		CodeUndeterminedTransitionType, CodeTransitionReturnMismatch,
		CodeMissingInitialValue, CodeInvalidInitialValue,
		CodeFinalMustNotBeStrict, CodeUndeterminedResultType,
		CodeUnsafeInternalResult, CodeSortOperatorNotApplicable,
		CodeNotFound, CodeReturnsSet, CodeRequiresRuntimeCoercion,
		CodePermissionDenied, CodeNameCollision,
	}
	seen := make(map[string]bool)
	for _, c := range codes {
		name := (&DefinitionError{Code: c}).codeName()
		assert.NotEqual(t, "UNKNOWN_ERROR", name)
		assert.False(t, seen[name], "duplicate code name %s", name)
		seen[name] = true
	}
}

func TestShapeCodec(t *testing.T) {
	tests := []struct {
		shape      Shape
		orderedSet bool
		directArgs int32
	}{
		{PlainShape(), false, -1},
		{OrderedSetShape(0), true, 0},
		{OrderedSetShape(2), true, 2},
		{VariableDirectShape(), true, -1},
		{HypotheticalShape(), true, -2},
	}
	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			orderedSet, directArgs := tt.shape.Encode()
			assert.Equal(t, tt.orderedSet, orderedSet)
			assert.Equal(t, tt.directArgs, directArgs)

			back, err := DecodeShape(orderedSet, directArgs)
			assert.NoError(t, err)
			assert.Equal(t, tt.shape, back)
		})
	}

	t.Run("invalid sentinels", func(t *testing.T) {
		_, err := DecodeShape(false, 0)
		assert.Error(t, err)
		_, err = DecodeShape(false, -2)
		assert.Error(t, err)
		_, err = DecodeShape(true, -3)
		assert.Error(t, err)
	})
}

func TestArgModes(t *testing.T) {
	assert.Equal(t, "", argModes([]Arg{{Type: types.Int4}, {Type: types.Int8}}))
	assert.Equal(t, "iiv", argModes([]Arg{{Type: types.Int4}, {Type: types.Int8}, {Type: types.Any, Mode: Variadic}}))

	args := argsFromRow([]types.ID{types.Int4, types.Any}, "iv", []string{"a", "b"})
	assert.Equal(t, []Arg{
		{Name: "a", Type: types.Int4},
		{Name: "b", Type: types.Any, Mode: Variadic},
	}, args)
}
