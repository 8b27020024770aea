package aggdef

import (
	"fmt"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

// Accumulator 普通聚合的逐行累加运行时：按行推进转移函数，
// 结束时经由终函数（如有）产出结果。一个 Accumulator 服务一个分组，
// 不做内部同步。
type Accumulator struct {
	reg   *types.Registry
	desc  *Descriptor
	ctx   *catalog.CallContext
	state dataset.Datum
	// noValue 表示严格转移函数且无初始值、还没见到第一行非 NULL 输入，
	// 此时第一行输入直接充当初始转移值。
	noValue bool
}

// NewAccumulator 为一个普通聚合描述符创建累加器。初始值文本在这里
// （调用时刻）经转移类型的输入函数解释，而不是沿用定义时的解析结果。
func NewAccumulator(reg *types.Registry, desc *Descriptor) (*Accumulator, error) {
	if desc.Kind() != Plain {
		return nil, fmt.Errorf("aggdef: %s aggregate %s is evaluated against a sorted group, not row by row",
			desc.Kind(), desc.Name)
	}
	if desc.TransFn == nil {
		return nil, fmt.Errorf("aggdef: aggregate %s has no transition function", desc.Name)
	}
	a := &Accumulator{
		reg:  reg,
		desc: desc,
		ctx: &catalog.CallContext{
			Registry: reg,
			ArgTypes: append([]types.ID{desc.TransType}, desc.ArgTypes()...),
		},
	}
	if err := a.Reset(); err != nil {
		return nil, err
	}
	return a, nil
}

// Reset 重置为分组开始状态。初始值重新解释，像 timestamp 的 "now"
// 这类非确定性输入每个分组都会得到新值。
func (a *Accumulator) Reset() error {
	a.state = dataset.Null()
	a.noValue = false
	if a.desc.InitValue != nil {
		t, ok := a.reg.Lookup(a.desc.TransType)
		if !ok || t.Input == nil {
			return fmt.Errorf("aggdef: transition type %s has no input conversion for initial value",
				a.reg.TypeName(a.desc.TransType))
		}
		v, err := t.Input(*a.desc.InitValue)
		if err != nil {
			return fmt.Errorf("aggdef: invalid initial value for type %s: %w",
				a.reg.TypeName(a.desc.TransType), err)
		}
		a.state = dataset.NewDatum(v)
	} else if a.desc.TransFn.Strict {
		a.noValue = true
	}
	return nil
}

// Add 向分组推进一行输入。参数个数必须等于声明的参数个数，
// 变长参数以收集好的数组 datum 传入。
func (a *Accumulator) Add(args ...dataset.Datum) error {
	if len(args) != len(a.desc.Args) {
		return fmt.Errorf("aggdef: aggregate %s expects %d arguments, got %d",
			a.desc.Name, len(a.desc.Args), len(args))
	}

	transFn := a.desc.TransFn
	if transFn.Strict {
		for _, arg := range args {
			if arg.IsNull() {
				return nil // 严格转移函数跳过含 NULL 的行
			}
		}
		if a.noValue {
			a.state = args[0]
			a.noValue = false
			return nil
		}
		if a.state.IsNull() {
			return nil // 严格转移函数不以 NULL 状态调用
		}
	}

	callArgs := make([]dataset.Datum, 0, len(args)+1)
	callArgs = append(callArgs, a.state)
	callArgs = append(callArgs, args...)
	result, err := transFn.Entry().Call(a.ctx, callArgs)
	if err != nil {
		return fmt.Errorf("aggdef: aggregate %s transition: %w", a.desc.Name, err)
	}
	a.state = result
	return nil
}

// Result 产出聚合结果：有终函数时调用终函数，否则就是转移值本身。
// 不修改状态，可以重复调用。
func (a *Accumulator) Result() (dataset.Datum, error) {
	if a.desc.FinalFn == nil {
		return a.state, nil
	}
	result, err := a.desc.FinalFn.Entry().Call(a.ctx, []dataset.Datum{a.state})
	if err != nil {
		return dataset.Null(), fmt.Errorf("aggdef: aggregate %s final: %w", a.desc.Name, err)
	}
	return result, nil
}
