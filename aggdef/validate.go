package aggdef

import (
	"errors"
	"strings"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/logger"
	"github.com/rulego/setagg/types"
)

// Definer 聚合定义入口，持有函数/操作符目录、聚合行存储与依赖图。
type Definer struct {
	catalog *catalog.Catalog
	store   catalog.Store
	deps    catalog.DependencyRecorder
}

// NewDefiner wires the definition pipeline onto its collaborators.
func NewDefiner(c *catalog.Catalog, store catalog.Store, deps catalog.DependencyRecorder) *Definer {
	return &Definer{catalog: c, store: store, deps: deps}
}

// Catalog returns the function/operator catalog.
func (d *Definer) Catalog() *catalog.Catalog {
	return d.catalog
}

// Store returns the aggregate row store.
func (d *Definer) Store() catalog.Store {
	return d.store
}

// Dependencies returns the dependency recorder.
func (d *Definer) Dependencies() catalog.DependencyRecorder {
	return d.deps
}

// Validate 对一次定义请求做全部校验与支撑函数解析，产出冻结的描述符。
// 校验严格有序，任何失败都在任何目录写入之前发生；因此没有回滚逻辑。
//
// Validate checks the raw definition, resolves its support functions and
// operators against the catalog, and freezes the result into a Descriptor.
// Every check runs before any catalog write, so a failure leaves nothing to
// undo.
func (d *Definer) Validate(p catalog.Principal, def *Definition) (*Descriptor, error) {
	reg := d.catalog.Registry()

	name := strings.ToLower(strings.TrimSpace(def.Name))
	if name == "" {
		return nil, newError(CodeIllegalCombination, def.Name, "no aggregate name supplied")
	}
	namespace := def.Namespace
	if namespace == "" {
		namespace = "public"
	}

	if !d.catalog.Access().CanCreateIn(p, namespace) {
		e := newError(CodePermissionDenied, name, "permission denied for namespace %s", namespace)
		e.Object = namespace
		e.cause = catalog.ErrPermission
		return nil, e
	}

	orderedSet := def.DirectArgs >= 0
	if def.DirectArgs < -1 || def.DirectArgs > len(def.Args) {
		return nil, newError(CodeIllegalCombination, name,
			"direct argument count %d is outside the argument list of length %d", def.DirectArgs, len(def.Args))
	}
	if def.Hypothetical && !orderedSet {
		return nil, newError(CodeIllegalCombination, name,
			"hypothetical-set aggregate must be declared with ordered arguments")
	}

	if orderedSet {
		if def.TransFunc != "" {
			return nil, newError(CodeIllegalCombination, name,
				"transition function must not be specified for an ordered-set aggregate")
		}
		if def.FinalFunc == "" {
			return nil, newError(CodeIllegalCombination, name,
				"final function must be specified for an ordered-set aggregate")
		}
	} else {
		if def.TransType == types.Invalid {
			return nil, newError(CodeIllegalCombination, name, "aggregate transition type must be specified")
		}
		if def.TransFunc == "" {
			return nil, newError(CodeIllegalCombination, name, "aggregate transition function must be specified")
		}
		if def.Strict {
			return nil, newError(CodeIllegalCombination, name,
				"aggregate with a transition function must not be explicitly strict")
		}
	}

	// 转移类型不能是非多态伪类型：内部状态必须可存储。
	// internal 仅限超级用户的普通聚合，错误连接 internal 函数可以
	// 越过类型系统破坏内存。
	if def.TransType != types.Invalid &&
		types.IsPseudo(def.TransType) && !types.IsPolymorphic(def.TransType) {
		if def.TransType != types.Internal || !p.Superuser || orderedSet {
			e := newError(CodeIllegalCombination, name,
				"aggregate transition data type cannot be %s", reg.TypeName(def.TransType))
			e.Object = reg.TypeName(def.TransType)
			return nil, e
		}
	}

	// 初始值始终以文本存储、调用时再解释（类型的输入转换不一定是
	// 确定性的，比如 timestamp 的 "now"）。但语法错误在定义期报告
	// 对用户更友好，所以具体类型的初始值在这里先过一遍输入函数。
	if def.InitValue != nil {
		if def.TransType == types.Invalid {
			return nil, newError(CodeIllegalCombination, name,
				"initial value must not be specified without a transition type")
		}
		if !types.IsPseudo(def.TransType) {
			if t, ok := reg.Lookup(def.TransType); ok && t.Input != nil {
				if _, err := t.Input(*def.InitValue); err != nil {
					e := newError(CodeInvalidInitialValue, name,
						"invalid initial value for type %s: %v", reg.TypeName(def.TransType), err)
					e.Object = reg.TypeName(def.TransType)
					e.cause = err
					return nil, e
				}
			}
		}
	}

	hasPolyArg := false
	hasInternalArg := false
	for _, arg := range def.Args {
		if types.IsPolymorphic(arg.Type) {
			hasPolyArg = true
		} else if arg.Type == types.Internal {
			hasInternalArg = true
		}
	}

	// 参数模式扫描：变长参数至多一个且必须位于末尾；有序段里的
	// 变长参数必须是 "any"。
	variadicElem := types.Invalid
	seenVariadic := false
	for i, arg := range def.Args {
		switch arg.Mode {
		case Variadic:
			if seenVariadic {
				e := newError(CodeDuplicateVariadic, name, "VARIADIC must not be specified more than once")
				e.Position = i
				return nil, e
			}
			seenVariadic = true
			variadicElem = arg.Type
			if orderedSet && i >= def.DirectArgs && variadicElem != types.Any {
				e := newError(CodeOrderedVariadicMustBeAny, name,
					"VARIADIC ordered arguments must be of type any")
				e.Position = i
				return nil, e
			}
		case In:
			if seenVariadic {
				e := newError(CodeVariadicNotLast, name, "VARIADIC argument must be last")
				e.Position = i
				return nil, e
			}
		default:
			e := newError(CodeIllegalCombination, name, "invalid argument mode")
			e.Position = i
			return nil, e
		}
	}
	switch variadicElem {
	case types.Invalid, types.AnyArray, types.Any:
		// okay
	default:
		elem := reg.ElemType(variadicElem)
		if elem == types.Invalid {
			e := newError(CodeVariadicNotArray, name,
				"VARIADIC parameter must be an array, not %s", reg.TypeName(variadicElem))
			e.Object = reg.TypeName(variadicElem)
			return nil, e
		}
		variadicElem = elem
	}

	// 形状判定。假想集要求全部参数为直接参数且变长元素为 "any"；
	// 有序集在参数数等于直接参数数时同样只有 "any" 变长一条路。
	var shape Shape
	switch {
	case def.Hypothetical:
		if len(def.Args) != def.DirectArgs || variadicElem != types.Any {
			e := newError(CodeInvalidHypotheticalShape, name,
				"invalid argument types for a hypothetical-set aggregate")
			e.Hint = `required declaration is (..., VARIADIC "any") WITHIN GROUP (*)`
			return nil, e
		}
		shape = HypotheticalShape()
	case orderedSet && len(def.Args) == def.DirectArgs:
		if variadicElem != types.Any {
			e := newError(CodeInvalidOrderedSetShape, name,
				"invalid argument types for an ordered-set aggregate")
			e.Hint = `WITHIN GROUP (*) is not allowed without VARIADIC "any"`
			return nil, e
		}
		shape = VariableDirectShape()
	case orderedSet:
		shape = OrderedSetShape(def.DirectArgs)
	default:
		shape = PlainShape()
	}

	// 多态转移类型必须能从某个多态参数推导出来。
	if types.IsPolymorphic(def.TransType) && !hasPolyArg {
		e := newError(CodeUndeterminedTransitionType, name, "cannot determine transition data type")
		e.Hint = "an aggregate using a polymorphic transition type must have at least one polymorphic argument"
		return nil, e
	}

	argTypes := make([]types.ID, len(def.Args))
	for i, a := range def.Args {
		argTypes[i] = a.Type
	}

	desc := &Descriptor{
		Name:         name,
		Namespace:    namespace,
		Args:         append([]Arg(nil), def.Args...),
		Shape:        shape,
		VariadicElem: variadicElem,
		TransType:    def.TransType,
		Strict:       def.Strict,
		InitValue:    def.InitValue,
	}

	var finalType types.ID
	if !orderedSet {
		// 转移函数签名：(转移类型, 全部参数类型...)。返回类型必须与
		// 转移类型精确相等：转移值要在重复调用之间无漂移地往返。
		inputs := append([]types.ID{def.TransType}, argTypes...)
		transFn, derr := d.resolveSupport(p, name, def.TransFunc, inputs)
		if derr != nil {
			return nil, derr
		}
		if transFn.ReturnType != def.TransType {
			e := newError(CodeTransitionReturnMismatch, name,
				"return type of transition function %s is not %s",
				def.TransFunc, reg.TypeName(def.TransType))
			e.Object = def.TransFunc
			e.Types = inputs
			return nil, e
		}
		desc.TransFn = transFn

		// 严格转移函数没有初始值时，第一行输入直接充当初始转移值，
		// 所以第一个参数类型必须可以不经转换地当作转移类型使用。
		if transFn.Strict && def.InitValue == nil {
			if len(argTypes) < 1 || !reg.BinaryCoercible(argTypes[0], def.TransType) {
				e := newError(CodeMissingInitialValue, name,
					"must not omit initial value when transition function is strict and transition type is not compatible with input type")
				return nil, e
			}
		}
	}

	if orderedSet {
		// 终函数签名：全部声明参数类型；有转移类型且变长元素不是
		// "any" 时再把转移类型追加到末尾（"any" 变长的终函数在位置上
		// 已经兼容任何尾随类型）。
		inputs := append([]types.ID(nil), argTypes...)
		if def.TransType != types.Invalid && variadicElem != types.Any {
			inputs = append(inputs, def.TransType)
		}
		finalFn, derr := d.resolveSupport(p, name, def.FinalFunc, inputs)
		if derr != nil {
			return nil, derr
		}
		// 终函数总会被调用，空分组时拿到的是全 NULL 的哑参数，
		// 严格声明会让它连被调用的机会都没有。
		if finalFn.Strict {
			e := newError(CodeFinalMustNotBeStrict, name,
				"ordered-set aggregate final functions must not be declared strict")
			e.Object = def.FinalFunc
			return nil, e
		}
		desc.FinalFn = finalFn
		finalType = finalFn.ReturnType
	} else if def.FinalFunc != "" {
		finalFn, derr := d.resolveSupport(p, name, def.FinalFunc, []types.ID{def.TransType})
		if derr != nil {
			return nil, derr
		}
		desc.FinalFn = finalFn
		finalType = finalFn.ReturnType
	} else {
		finalType = def.TransType
	}
	desc.ResultType = finalType

	if types.IsPolymorphic(finalType) && !hasPolyArg {
		e := newError(CodeUndeterminedResultType, name, "cannot determine result data type")
		e.Hint = "an aggregate returning a polymorphic type must have at least one polymorphic argument"
		return nil, e
	}
	if finalType == types.Internal && !hasInternalArg {
		e := newError(CodeUnsafeInternalResult, name, "unsafe use of pseudo-type internal")
		e.Hint = "an aggregate returning internal must have at least one internal argument"
		return nil, e
	}

	if def.SortOp != "" {
		if shape.Kind() != Plain || len(def.Args) != 1 {
			return nil, newError(CodeSortOperatorNotApplicable, name,
				"sort operator can only be specified for single-argument plain aggregates")
		}
		sortOp, err := d.catalog.ResolveOperator(def.SortOp, argTypes[0], argTypes[0])
		if err != nil {
			e := newError(CodeNotFound, name, "%v", err)
			e.Object = def.SortOp
			e.cause = err
			return nil, e
		}
		desc.SortOp = sortOp
	}

	if def.TransSortOp != "" {
		if !orderedSet || def.TransType == types.Invalid {
			return nil, newError(CodeSortOperatorNotApplicable, name,
				"transition sort operator can only be specified for ordered-set aggregates with transition types")
		}
		transSortOp, err := d.catalog.ResolveOperator(def.TransSortOp, def.TransType, def.TransType)
		if err != nil {
			e := newError(CodeNotFound, name, "%v", err)
			e.Object = def.TransSortOp
			e.cause = err
			return nil, e
		}
		desc.TransSortOp = transSortOp
	}

	// 使用权限检查：参数类型、转移类型、结果类型。
	access := d.catalog.Access()
	for i, t := range argTypes {
		if !access.CanUseType(p, t) {
			e := newError(CodePermissionDenied, name, "permission denied for type %s", reg.TypeName(t))
			e.Object = reg.TypeName(t)
			e.Position = i
			e.cause = catalog.ErrPermission
			return nil, e
		}
	}
	if def.TransType != types.Invalid && !access.CanUseType(p, def.TransType) {
		e := newError(CodePermissionDenied, name, "permission denied for type %s", reg.TypeName(def.TransType))
		e.Object = reg.TypeName(def.TransType)
		e.cause = catalog.ErrPermission
		return nil, e
	}
	if !access.CanUseType(p, finalType) {
		e := newError(CodePermissionDenied, name, "permission denied for type %s", reg.TypeName(finalType))
		e.Object = reg.TypeName(finalType)
		e.cause = catalog.ErrPermission
		return nil, e
	}

	logger.Debug("validated aggregate %s.%s shape=%s result=%s", namespace, name, shape, reg.TypeName(finalType))
	return desc, nil
}

// resolveSupport 解析转移/终函数并把目录错误折算成定义期错误码。
func (d *Definer) resolveSupport(p catalog.Principal, aggName, fnName string, inputs []types.ID) (*catalog.ResolvedFunction, *DefinitionError) {
	fn, err := d.catalog.ResolveFunction(p, fnName, inputs)
	if err == nil {
		return fn, nil
	}
	code := CodeNotFound
	switch {
	case errors.Is(err, catalog.ErrReturnsSet):
		code = CodeReturnsSet
	case errors.Is(err, catalog.ErrRuntimeCoercion):
		code = CodeRequiresRuntimeCoercion
	case errors.Is(err, catalog.ErrPermission):
		code = CodePermissionDenied
	}
	e := newError(code, aggName, "%v", err)
	e.Object = fnName
	e.Types = inputs
	e.cause = err
	return nil, e
}
