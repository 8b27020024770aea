// Package aggdef 实现聚合函数定义的校验、目录注册与普通聚合的累加运行时。
// Package aggdef implements validation and catalog registration of aggregate
// definitions (plain, ordered-set and hypothetical-set) plus the accumulator
// runtime for plain aggregates.
package aggdef

import (
	"fmt"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/types"
)

// Mode 参数模式
type Mode int

const (
	// In 普通输入参数
	In Mode = iota
	// Variadic 变长参数，只能出现一次且必须在其段的末尾
	Variadic
)

// Arg 一个聚合参数：名称、类型、模式并列携带，
// 避免用下标运算去还原位置含义。
type Arg struct {
	Name string
	Type types.ID
	Mode Mode
}

// Kind 聚合种类
type Kind int

const (
	Plain Kind = iota
	OrderedSet
	HypotheticalSet
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case OrderedSet:
		return "ordered-set"
	case HypotheticalSet:
		return "hypothetical-set"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape 聚合的参数形状：普通、固定直接参数个数的有序集、
// 直接参数个数可变的有序集、假想集。历史上这四种形状用魔数
// （-1/-2/非负计数）编码在目录行里；API 层使用显式变体，
// 魔数只出现在持久化边界。
type Shape struct {
	kind   Kind
	direct int
}

// PlainShape 普通聚合形状。
func PlainShape() Shape {
	return Shape{kind: Plain}
}

// OrderedSetShape 固定 n 个直接参数的有序集形状。
func OrderedSetShape(directArgs int) Shape {
	return Shape{kind: OrderedSet, direct: directArgs}
}

// VariableDirectShape 直接参数个数可变的有序集形状
// （声明为 (..., VARIADIC "any") WITHIN GROUP (...)）。
func VariableDirectShape() Shape {
	return Shape{kind: OrderedSet, direct: -1}
}

// HypotheticalShape 假想集形状（全部参数为直接参数）。
func HypotheticalShape() Shape {
	return Shape{kind: HypotheticalSet}
}

// Kind returns the aggregate kind the shape implies.
func (s Shape) Kind() Kind {
	return s.kind
}

// IsOrderedSet reports whether the shape has ordered-set semantics
// (hypothetical-set included).
func (s Shape) IsOrderedSet() bool {
	return s.kind != Plain
}

// FixedDirectArgs returns the direct-argument count and true for the
// fixed-count ordered-set shape; ok is false for every other shape.
func (s Shape) FixedDirectArgs() (int, bool) {
	if s.kind == OrderedSet && s.direct >= 0 {
		return s.direct, true
	}
	return 0, false
}

// IsVariableDirect reports the variable-direct-count ordered-set shape.
func (s Shape) IsVariableDirect() bool {
	return s.kind == OrderedSet && s.direct < 0
}

func (s Shape) String() string {
	switch {
	case s.kind == Plain:
		return "plain"
	case s.kind == HypotheticalSet:
		return "hypothetical-set"
	case s.direct < 0:
		return "ordered-set(variable-direct)"
	default:
		return fmt.Sprintf("ordered-set(direct=%d)", s.direct)
	}
}

// Encode 折算成持久化行使用的 (有序集标志, 直接参数哨兵) 编码。
func (s Shape) Encode() (orderedSet bool, directArgs int32) {
	switch {
	case s.kind == Plain:
		return false, catalog.DirectArgsNone
	case s.kind == HypotheticalSet:
		return true, catalog.DirectArgsHypothetical
	case s.direct < 0:
		return true, catalog.DirectArgsNone
	default:
		return true, int32(s.direct)
	}
}

// DecodeShape 从持久化编码还原形状变体。
func DecodeShape(orderedSet bool, directArgs int32) (Shape, error) {
	if !orderedSet {
		if directArgs != catalog.DirectArgsNone {
			return Shape{}, fmt.Errorf("aggdef: plain aggregate has direct-argument sentinel %d", directArgs)
		}
		return PlainShape(), nil
	}
	switch {
	case directArgs == catalog.DirectArgsHypothetical:
		return HypotheticalShape(), nil
	case directArgs == catalog.DirectArgsNone:
		return VariableDirectShape(), nil
	case directArgs >= 0:
		return OrderedSetShape(int(directArgs)), nil
	default:
		return Shape{}, fmt.Errorf("aggdef: invalid direct-argument sentinel %d", directArgs)
	}
}

// Definition 一次聚合定义请求的原始输入，对应已经解析完的 DDL 子句。
// DirectArgs 为 -1 表示普通聚合；>= 0 表示有序集聚合的直接参数个数
// （参数列表为直接参数在前、有序参数在后的拼接）。
type Definition struct {
	Name         string
	Namespace    string
	Args         []Arg
	DirectArgs   int
	Hypothetical bool
	Strict       bool // 显式 STRICT，仅有序集聚合可用
	TransFunc    string
	FinalFunc    string
	SortOp       string
	TransSortOp  string
	TransType    types.ID
	InitValue    *string
}

// Descriptor 通过全部校验后的聚合描述符。在一次定义请求内构建、
// 冻结、持久化；持久化的目录行是唯一跨请求的产物。
type Descriptor struct {
	ID           catalog.OID
	Name         string
	Namespace    string
	Args         []Arg
	Shape        Shape
	VariadicElem types.ID // Invalid 表示没有变长参数
	TransType    types.ID
	TransFn      *catalog.ResolvedFunction
	FinalFn      *catalog.ResolvedFunction
	SortOp       *catalog.ResolvedOperator
	TransSortOp  *catalog.ResolvedOperator
	Strict       bool
	InitValue    *string
	ResultType   types.ID
}

// Kind returns the aggregate kind.
func (d *Descriptor) Kind() Kind {
	return d.Shape.Kind()
}

// NumDirectArgs returns how many leading arguments are direct. For plain
// aggregates every argument is direct; for the variable-direct and
// hypothetical shapes the whole list is.
func (d *Descriptor) NumDirectArgs() int {
	if n, ok := d.Shape.FixedDirectArgs(); ok {
		return n
	}
	return len(d.Args)
}

// DirectArgs returns the direct-argument prefix of the argument list.
func (d *Descriptor) DirectArgs() []Arg {
	return d.Args[:d.NumDirectArgs()]
}

// OrderedArgs returns the ordered-argument suffix, empty for plain,
// variable-direct and hypothetical shapes.
func (d *Descriptor) OrderedArgs() []Arg {
	return d.Args[d.NumDirectArgs():]
}

// ArgTypes returns the declared types of all arguments in order.
func (d *Descriptor) ArgTypes() []types.ID {
	out := make([]types.ID, len(d.Args))
	for i, a := range d.Args {
		out[i] = a.Type
	}
	return out
}

// argModes 折算成持久化用的模式字符序列；全部普通参数时为空串。
func argModes(args []Arg) string {
	variadic := false
	for _, a := range args {
		if a.Mode == Variadic {
			variadic = true
			break
		}
	}
	if !variadic {
		return ""
	}
	modes := make([]byte, len(args))
	for i, a := range args {
		if a.Mode == Variadic {
			modes[i] = catalog.ModeVariadic
		} else {
			modes[i] = catalog.ModeIn
		}
	}
	return string(modes)
}

// argsFromRow 从持久化行还原参数结构。
func argsFromRow(argTypes []types.ID, modes string, names []string) []Arg {
	args := make([]Arg, len(argTypes))
	for i, t := range argTypes {
		args[i] = Arg{Type: t}
		if i < len(names) {
			args[i].Name = names[i]
		}
		if i < len(modes) && modes[i] == catalog.ModeVariadic {
			args[i].Mode = Variadic
		}
	}
	return args
}
