package catalog

import (
	"fmt"
	"strings"

	"github.com/rulego/setagg/types"
)

// ResolvedFunction 按调用签名解析出的函数：条目标识、声明参数类型与
// 多态统一后的返回类型。
type ResolvedFunction struct {
	ID         OID
	Name       string
	ArgTypes   []types.ID
	ReturnType types.ID
	Strict     bool

	entry *FunctionEntry
}

// Entry returns the underlying catalog entry.
func (r *ResolvedFunction) Entry() *FunctionEntry {
	return r.entry
}

// NewResolvedFunction wraps a catalog entry with an already unified return
// type. Used when rebuilding a descriptor from its persisted row.
func NewResolvedFunction(entry *FunctionEntry, returnType types.ID) *ResolvedFunction {
	return &ResolvedFunction{
		ID:         entry.ID,
		Name:       entry.Name,
		ArgTypes:   entry.ArgTypes,
		ReturnType: returnType,
		Strict:     entry.Strict,
		entry:      entry,
	}
}

// ResolveFunction 按名称与调用参数类型解析唯一的函数重载。
//
// Resolution finds overloads of the name with matching arity, keeps those
// whose declared parameters accept the inputs (exactly, via implicit
// coercion, or via a consistent polymorphic binding), and requires a unique
// survivor, with an all-positions-exact match breaking ties. The survivor's
// return type is refined by polymorphic unification; it may legitimately
// stay polymorphic when the inputs are themselves polymorphic.
//
// The call path for aggregate support functions invokes the function without
// a coercion step, so after unification every position whose declared type
// is concrete must hold the input type without conversion; otherwise the
// resolution fails with ErrRuntimeCoercion. The principal must also have
// execute permission on the resolved function.
func (c *Catalog) ResolveFunction(p Principal, name string, inputs []types.ID) (*ResolvedFunction, error) {
	cands := c.candidates(name, len(inputs))

	var matches []*FunctionEntry
	var exact *FunctionEntry
	exactCount := 0
	for _, cand := range cands {
		if sameTypes(cand.ArgTypes, inputs) {
			exact = cand
			exactCount++
			continue
		}
		if c.candidateMatches(cand, inputs) {
			matches = append(matches, cand)
		}
	}

	var chosen *FunctionEntry
	switch {
	case exactCount == 1:
		chosen = exact
	case exactCount > 1:
		return nil, fmt.Errorf("function %s is not unique: %w", signature(c.reg, name, inputs), ErrAmbiguous)
	case len(matches) == 1:
		chosen = matches[0]
	case len(matches) == 0:
		return nil, fmt.Errorf("function %s does not exist: %w", signature(c.reg, name, inputs), ErrNotFound)
	default:
		return nil, fmt.Errorf("function %s is not unique: %w", signature(c.reg, name, inputs), ErrAmbiguous)
	}

	if chosen.ReturnsSet {
		return nil, fmt.Errorf("function %s returns a set: %w", signature(c.reg, name, inputs), ErrReturnsSet)
	}

	rettype, err := c.reg.ResolvePolymorphic(inputs, chosen.ArgTypes, chosen.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("function %s: %v: %w", signature(c.reg, name, inputs), err, ErrNotFound)
	}

	for i, decl := range chosen.ArgTypes {
		if types.IsPolymorphic(decl) {
			continue
		}
		if !c.reg.BinaryCoercible(inputs[i], decl) {
			return nil, fmt.Errorf("function %s requires run-time type coercion: %w",
				chosen.Signature(c.reg), ErrRuntimeCoercion)
		}
	}

	if !c.access.CanExecute(p, chosen.ID) {
		return nil, fmt.Errorf("permission denied for function %s: %w", chosen.Name, ErrPermission)
	}

	return &ResolvedFunction{
		ID:         chosen.ID,
		Name:       chosen.Name,
		ArgTypes:   chosen.ArgTypes,
		ReturnType: rettype,
		Strict:     chosen.Strict,
		entry:      chosen,
	}, nil
}

// candidateMatches 判断候选函数的声明参数能否接受输入类型。
func (c *Catalog) candidateMatches(cand *FunctionEntry, inputs []types.ID) bool {
	for i, decl := range cand.ArgTypes {
		in := inputs[i]
		if decl == in || decl == types.Any {
			continue
		}
		if types.IsPolymorphic(decl) {
			// 逐位先放行，一致性交给下面的统一检查。
			continue
		}
		if !c.reg.ImplicitCoercible(in, decl) {
			return false
		}
	}
	if _, err := c.reg.ResolvePolymorphic(inputs, cand.ArgTypes, cand.ReturnType); err != nil {
		return false
	}
	return true
}

func signature(reg *types.Registry, name string, args []types.ID) string {
	names := make([]string, len(args))
	for i, t := range args {
		names[i] = reg.TypeName(t)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(names, ", "))
}
