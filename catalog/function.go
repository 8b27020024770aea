package catalog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

// 参数模式，沿用单字符编码：'i' 普通参数，'v' 变长参数。
const (
	ModeIn       = 'i'
	ModeVariadic = 'v'
)

// CallContext 单次函数调用的环境。SortContext 仅在有序集聚合的
// 终函数调用时设置，由求值层填入其排序上下文句柄。
type CallContext struct {
	Registry    *types.Registry
	ArgTypes    []types.ID
	SortContext interface{}
}

// NativeFunc Go 实现的函数体。
type NativeFunc func(ctx *CallContext, args []dataset.Datum) (dataset.Datum, error)

// FunctionEntry 目录中的一个函数。函数体要么是 Native（Go 实现），
// 要么是 Expr（expr 表达式，注册时编译），聚合占位条目两者皆空。
type FunctionEntry struct {
	ID          OID
	Name        string
	Namespace   string
	ArgTypes    []types.ID
	ArgModes    string // 每参数一个模式字符，空串表示全部普通参数
	ArgNames    []string
	ReturnType  types.ID
	Variadic    types.ID // 变长参数的元素类型，无变长参数时为 Invalid
	Strict      bool
	ReturnsSet  bool
	IsAggregate bool
	Native      NativeFunc
	Expr        string

	program *vm.Program
}

// compile 在注册时编译表达式函数体。
func (f *FunctionEntry) compile() error {
	if f.Expr == "" {
		return nil
	}
	program, err := expr.Compile(f.Expr, expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("compile body: %w", err)
	}
	f.program = program
	return nil
}

// Signature returns a printable name(argtypes) form for diagnostics.
func (f *FunctionEntry) Signature(reg *types.Registry) string {
	names := make([]string, len(f.ArgTypes))
	for i, t := range f.ArgTypes {
		names[i] = reg.TypeName(t)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(names, ", "))
}

// Call invokes the function body. Strict functions return NULL without
// running the body when any argument is NULL. Aggregate placeholder entries
// cannot be called directly.
func (f *FunctionEntry) Call(ctx *CallContext, args []dataset.Datum) (dataset.Datum, error) {
	if f.IsAggregate {
		return dataset.Null(), fmt.Errorf("aggregate %s cannot be called as a plain function", f.Name)
	}
	if f.Strict {
		for _, a := range args {
			if a.IsNull() {
				return dataset.Null(), nil
			}
		}
	}
	switch {
	case f.Native != nil:
		return f.Native(ctx, args)
	case f.program != nil:
		return f.runExpr(args)
	default:
		return dataset.Null(), fmt.Errorf("function %s has no implementation", f.Name)
	}
}

// runExpr 以 args 切片（NULL 为 nil）加可选的具名参数执行表达式体。
func (f *FunctionEntry) runExpr(args []dataset.Datum) (dataset.Datum, error) {
	values := make([]interface{}, len(args))
	for i, a := range args {
		if !a.IsNull() {
			values[i] = a.Value
		}
	}
	env := map[string]interface{}{"args": values}
	for i, name := range f.ArgNames {
		if name != "" && i < len(values) {
			env[name] = values[i]
		}
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return dataset.Null(), fmt.Errorf("function %s: %w", f.Name, err)
	}
	return normalizeResult(out), nil
}

// normalizeResult 把表达式结果折算成 datum 的标准表示：
// 整数统一为 int64，float32 提升为 float64。
func normalizeResult(v interface{}) dataset.Datum {
	switch v.(type) {
	case nil:
		return dataset.Null()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return dataset.NewDatum(cast.ToInt64(v))
	case float32:
		return dataset.NewDatum(cast.ToFloat64(v))
	default:
		return dataset.NewDatum(v)
	}
}
