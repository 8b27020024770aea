package aggdef

import (
	"errors"
	"fmt"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/logger"
	"github.com/rulego/setagg/types"
)

// Define 校验并注册一个聚合定义，返回冻结的描述符（含新分配的标识）。
// 校验失败时不产生任何目录写入。
func (d *Definer) Define(p catalog.Principal, def *Definition) (*Descriptor, error) {
	desc, err := d.Validate(p, def)
	if err != nil {
		return nil, err
	}
	if _, err := d.Register(p, desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// Register 持久化一个已校验的描述符：先注册可调用占位条目（聚合的
// 调用被执行机制拦截，不会被当作普通函数执行），再写聚合行，最后
// 登记依赖边。写入失败（如重名）原样视为定义请求无效，不重试。
func (d *Definer) Register(p catalog.Principal, desc *Descriptor) (catalog.OID, error) {
	names := make([]string, len(desc.Args))
	for i, a := range desc.Args {
		names[i] = a.Name
	}

	placeholder := &catalog.FunctionEntry{
		Name:        desc.Name,
		Namespace:   desc.Namespace,
		ArgTypes:    desc.ArgTypes(),
		ArgModes:    argModes(desc.Args),
		ArgNames:    names,
		ReturnType:  desc.ResultType,
		Variadic:    desc.VariadicElem,
		Strict:      desc.Strict,
		IsAggregate: true,
	}
	aggID, err := d.catalog.CreateFunction(placeholder)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			e := newError(CodeNameCollision, desc.Name, "%v", err)
			e.cause = err
			return 0, e
		}
		return 0, err
	}

	orderedSet, directArgs := desc.Shape.Encode()
	row := &catalog.AggregateRow{
		AggID:      aggID,
		Name:       desc.Name,
		Namespace:  desc.Namespace,
		ArgTypes:   desc.ArgTypes(),
		ArgModes:   argModes(desc.Args),
		ArgNames:   names,
		ResultType: desc.ResultType,
		TransType:  desc.TransType,
		OrderedSet: orderedSet,
		DirectArgs: directArgs,
		InitValue:  desc.InitValue,
		Strict:     desc.Strict,
	}
	if desc.TransFn != nil {
		row.TransFn = desc.TransFn.ID
	}
	if desc.FinalFn != nil {
		row.FinalFn = desc.FinalFn.ID
	}
	if desc.SortOp != nil {
		row.SortOp = desc.SortOp.ID
	}
	if desc.TransSortOp != nil {
		row.TransSortOp = desc.TransSortOp.ID
	}

	if err := d.store.Insert(row); err != nil {
		// 聚合行没写成，占位条目必须跟着消失，保持全有或全无。
		d.catalog.DropFunction(aggID)
		if errors.Is(err, catalog.ErrDuplicate) {
			e := newError(CodeNameCollision, desc.Name, "%v", err)
			e.cause = err
			return 0, e
		}
		return 0, err
	}

	if err := d.recordDependencies(aggID, desc); err != nil {
		return 0, err
	}

	desc.ID = aggID
	logger.Debug("registered aggregate %s.%s id=%d", desc.Namespace, desc.Name, aggID)
	return aggID, nil
}

// recordDependencies 登记新聚合到其引用对象的依赖边。普通聚合对
// 转移类型的依赖已经由转移函数签名间接承载；带 "any" 变长的有序集
// 聚合的任何函数签名都不引用转移类型，需要显式补一条边，否则删除
// 转移类型会无声地孤立这个聚合。
func (d *Definer) recordDependencies(aggID catalog.OID, desc *Descriptor) error {
	from := catalog.AggregateRef(aggID)

	if desc.TransFn != nil {
		if err := d.deps.Record(from, catalog.FunctionRef(desc.TransFn.ID)); err != nil {
			return err
		}
	}
	if desc.FinalFn != nil {
		if err := d.deps.Record(from, catalog.FunctionRef(desc.FinalFn.ID)); err != nil {
			return err
		}
	}
	if desc.SortOp != nil {
		if err := d.deps.Record(from, catalog.OperatorRef(desc.SortOp.ID)); err != nil {
			return err
		}
	}
	if desc.TransSortOp != nil {
		if err := d.deps.Record(from, catalog.OperatorRef(desc.TransSortOp.ID)); err != nil {
			return err
		}
	}
	if desc.TransType != types.Invalid && desc.Shape.IsOrderedSet() && desc.VariadicElem == types.Any {
		if err := d.deps.Record(from, catalog.TypeRef(desc.TransType)); err != nil {
			return err
		}
	}
	return nil
}

// Load 按标识读回聚合行并重建描述符。支撑函数的返回类型按与定义时
// 相同的统一规则重新求得，使重建结果与注册前的描述符一致。
func (d *Definer) Load(id catalog.OID) (*Descriptor, error) {
	row, err := d.store.Get(id)
	if err != nil {
		return nil, err
	}

	args := argsFromRow(row.ArgTypes, row.ArgModes, row.ArgNames)
	shape, err := DecodeShape(row.OrderedSet, row.DirectArgs)
	if err != nil {
		return nil, err
	}

	reg := d.catalog.Registry()
	variadicElem := types.Invalid
	for _, a := range args {
		if a.Mode == Variadic {
			variadicElem = a.Type
			if variadicElem != types.Any && variadicElem != types.AnyArray {
				variadicElem = reg.ElemType(variadicElem)
			}
		}
	}

	desc := &Descriptor{
		ID:           row.AggID,
		Name:         row.Name,
		Namespace:    row.Namespace,
		Args:         args,
		Shape:        shape,
		VariadicElem: variadicElem,
		TransType:    row.TransType,
		Strict:       row.Strict,
		InitValue:    row.InitValue,
		ResultType:   row.ResultType,
	}

	argTypes := desc.ArgTypes()
	if row.TransFn != 0 {
		inputs := append([]types.ID{row.TransType}, argTypes...)
		desc.TransFn, err = d.rebuildResolved(row.TransFn, inputs)
		if err != nil {
			return nil, err
		}
	}
	if row.FinalFn != 0 {
		var inputs []types.ID
		if shape.IsOrderedSet() {
			inputs = append([]types.ID(nil), argTypes...)
			if row.TransType != types.Invalid && variadicElem != types.Any {
				inputs = append(inputs, row.TransType)
			}
		} else {
			inputs = []types.ID{row.TransType}
		}
		desc.FinalFn, err = d.rebuildResolved(row.FinalFn, inputs)
		if err != nil {
			return nil, err
		}
	}
	if row.SortOp != 0 {
		op, ok := d.catalog.Operator(row.SortOp)
		if !ok {
			return nil, fmt.Errorf("aggdef: sort operator %d: %w", row.SortOp, catalog.ErrNotFound)
		}
		desc.SortOp = &catalog.ResolvedOperator{ID: op.ID, Name: op.Name, Left: op.Left, Right: op.Right}
	}
	if row.TransSortOp != 0 {
		op, ok := d.catalog.Operator(row.TransSortOp)
		if !ok {
			return nil, fmt.Errorf("aggdef: transition sort operator %d: %w", row.TransSortOp, catalog.ErrNotFound)
		}
		desc.TransSortOp = &catalog.ResolvedOperator{ID: op.ID, Name: op.Name, Left: op.Left, Right: op.Right}
	}

	return desc, nil
}

// Lookup 按命名空间、名称（不区分大小写）与参数类型读回描述符。
func (d *Definer) Lookup(namespace, name string, argTypes []types.ID) (*Descriptor, error) {
	row, err := d.store.Lookup(namespace, name, argTypes)
	if err != nil {
		return nil, err
	}
	return d.Load(row.AggID)
}

// rebuildResolved 用目录条目加重新统一的返回类型重建函数引用。
func (d *Definer) rebuildResolved(id catalog.OID, inputs []types.ID) (*catalog.ResolvedFunction, error) {
	entry, ok := d.catalog.Function(id)
	if !ok {
		return nil, fmt.Errorf("aggdef: function %d: %w", id, catalog.ErrNotFound)
	}
	ret, err := d.catalog.Registry().ResolvePolymorphic(inputs, entry.ArgTypes, entry.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("aggdef: function %s: %v", entry.Name, err)
	}
	return catalog.NewResolvedFunction(entry, ret), nil
}
