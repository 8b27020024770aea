package catalog

import (
	"fmt"

	"github.com/rulego/setagg/types"
)

// OperatorEntry 目录中的一个二元操作符，按名称加操作数类型标识。
type OperatorEntry struct {
	ID    OID
	Name  string
	Left  types.ID
	Right types.ID
}

// ResolvedOperator 解析后的操作符引用。
type ResolvedOperator struct {
	ID    OID
	Name  string
	Left  types.ID
	Right types.ID
}

// ResolveOperator finds the operator with the given name accepting the
// operand types, preferring an exact match over a binary-coercible one.
func (c *Catalog) ResolveOperator(name string, left, right types.ID) (*ResolvedOperator, error) {
	c.mu.RLock()
	overloads := c.opNames[name]
	c.mu.RUnlock()

	var coercible *OperatorEntry
	multiple := false
	for _, op := range overloads {
		if op.Left == left && op.Right == right {
			return &ResolvedOperator{ID: op.ID, Name: op.Name, Left: op.Left, Right: op.Right}, nil
		}
		if c.reg.BinaryCoercible(left, op.Left) && c.reg.BinaryCoercible(right, op.Right) {
			if coercible != nil {
				multiple = true
			}
			coercible = op
		}
	}
	if coercible == nil {
		return nil, fmt.Errorf("operator %s(%s, %s) does not exist: %w",
			name, c.reg.TypeName(left), c.reg.TypeName(right), ErrNotFound)
	}
	if multiple {
		return nil, fmt.Errorf("operator %s(%s, %s) is ambiguous: %w",
			name, c.reg.TypeName(left), c.reg.TypeName(right), ErrAmbiguous)
	}
	return &ResolvedOperator{ID: coercible.ID, Name: coercible.Name, Left: coercible.Left, Right: coercible.Right}, nil
}
