package aggdef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rulego/setagg/types"
)

// Code 定义期错误码
type Code int

const (
	CodeIllegalCombination Code = iota
	CodeDuplicateVariadic
	CodeVariadicNotLast
	CodeOrderedVariadicMustBeAny
	CodeVariadicNotArray
	CodeInvalidHypotheticalShape
	CodeInvalidOrderedSetShape
	CodeUndeterminedTransitionType
	CodeTransitionReturnMismatch
	CodeMissingInitialValue
	CodeInvalidInitialValue
	CodeFinalMustNotBeStrict
	CodeUndeterminedResultType
	CodeUnsafeInternalResult
	CodeSortOperatorNotApplicable
	CodeNotFound
	CodeReturnsSet
	CodeRequiresRuntimeCoercion
	CodePermissionDenied
	CodeNameCollision
)

// DefinitionError 聚合定义被拒绝的结构化错误。
// 任何一个定义期错误都会放弃整个定义请求，不产生部分目录写入。
type DefinitionError struct {
	Code      Code
	Aggregate string     // 正在定义的聚合名
	Object    string     // 涉及的函数/操作符/类型名（如有）
	Types     []types.ID // 涉及的签名类型（如有）
	Position  int        // 参数位置，从 0 开始；-1 表示与位置无关
	Message   string
	Hint      string
	cause     error
}

// Error 实现 error 接口
func (e *DefinitionError) Error() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("[%s] %s", e.codeName(), e.Message))

	if e.Position >= 0 {
		builder.WriteString(fmt.Sprintf(" at argument %d", e.Position+1))
	}
	if e.Aggregate != "" {
		builder.WriteString(fmt.Sprintf(" (aggregate %q)", e.Aggregate))
	}
	if e.Hint != "" {
		builder.WriteString(fmt.Sprintf("\nHint: %s", e.Hint))
	}

	return builder.String()
}

// Unwrap 暴露底层目录错误，便于 errors.Is 判断。
func (e *DefinitionError) Unwrap() error {
	return e.cause
}

// codeName 获取错误码名称
func (e *DefinitionError) codeName() string {
	switch e.Code {
	case CodeIllegalCombination:
		return "ILLEGAL_COMBINATION"
	case CodeDuplicateVariadic:
		return "DUPLICATE_VARIADIC"
	case CodeVariadicNotLast:
		return "VARIADIC_NOT_LAST"
	case CodeOrderedVariadicMustBeAny:
		return "ORDERED_VARIADIC_MUST_BE_ANY"
	case CodeVariadicNotArray:
		return "VARIADIC_NOT_ARRAY"
	case CodeInvalidHypotheticalShape:
		return "INVALID_HYPOTHETICAL_SHAPE"
	case CodeInvalidOrderedSetShape:
		return "INVALID_ORDERED_SET_SHAPE"
	case CodeUndeterminedTransitionType:
		return "UNDETERMINED_TRANSITION_TYPE"
	case CodeTransitionReturnMismatch:
		return "TRANSITION_RETURN_MISMATCH"
	case CodeMissingInitialValue:
		return "MISSING_INITIAL_VALUE"
	case CodeInvalidInitialValue:
		return "INVALID_INITIAL_VALUE"
	case CodeFinalMustNotBeStrict:
		return "FINAL_MUST_NOT_BE_STRICT"
	case CodeUndeterminedResultType:
		return "UNDETERMINED_RESULT_TYPE"
	case CodeUnsafeInternalResult:
		return "UNSAFE_INTERNAL_RESULT"
	case CodeSortOperatorNotApplicable:
		return "SORT_OPERATOR_NOT_APPLICABLE"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeReturnsSet:
		return "RETURNS_SET"
	case CodeRequiresRuntimeCoercion:
		return "REQUIRES_RUNTIME_COERCION"
	case CodePermissionDenied:
		return "PERMISSION_DENIED"
	case CodeNameCollision:
		return "NAME_COLLISION"
	default:
		return "UNKNOWN_ERROR"
	}
}

// newError 创建与参数位置无关的定义错误
func newError(code Code, aggregate, format string, args ...interface{}) *DefinitionError {
	return &DefinitionError{
		Code:      code,
		Aggregate: aggregate,
		Position:  -1,
		Message:   fmt.Sprintf(format, args...),
	}
}

// ErrorCode 提取定义错误的错误码；err 不是 DefinitionError 时返回 false。
func ErrorCode(err error) (Code, bool) {
	var de *DefinitionError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}
