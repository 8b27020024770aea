// Package catalog 提供聚合定义所依赖的函数/操作符目录能力：
// 按名称与签名解析（含多态统一）、权限检查、聚合行持久化与依赖图记录。
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rulego/setagg/types"
)

// OID 目录对象标识
type OID uint32

// ObjectKind 目录对象种类
type ObjectKind int

const (
	KindType ObjectKind = iota + 1
	KindFunction
	KindOperator
	KindAggregate
)

// ObjectRef identifies a catalog object for permission checks and
// dependency edges.
type ObjectRef struct {
	Kind ObjectKind
	ID   OID
}

// TypeRef builds an ObjectRef for a type.
func TypeRef(id types.ID) ObjectRef {
	return ObjectRef{Kind: KindType, ID: OID(id)}
}

// FunctionRef builds an ObjectRef for a function.
func FunctionRef(id OID) ObjectRef {
	return ObjectRef{Kind: KindFunction, ID: id}
}

// OperatorRef builds an ObjectRef for an operator.
func OperatorRef(id OID) ObjectRef {
	return ObjectRef{Kind: KindOperator, ID: id}
}

// AggregateRef builds an ObjectRef for an aggregate.
func AggregateRef(id OID) ObjectRef {
	return ObjectRef{Kind: KindAggregate, ID: id}
}

// Catalog 函数与操作符目录。聚合行本身存放在 Store 中。
type Catalog struct {
	mu        sync.RWMutex
	reg       *types.Registry
	access    AccessController
	nextOID   OID
	functions map[OID]*FunctionEntry
	funcNames map[string][]*FunctionEntry
	operators map[OID]*OperatorEntry
	opNames   map[string][]*OperatorEntry
}

// New creates an empty catalog over the given type registry. A nil access
// controller means every principal is allowed everything.
func New(reg *types.Registry, access AccessController) *Catalog {
	if access == nil {
		access = AllowAll{}
	}
	return &Catalog{
		reg:       reg,
		access:    access,
		nextOID:   1000,
		functions: make(map[OID]*FunctionEntry),
		funcNames: make(map[string][]*FunctionEntry),
		operators: make(map[OID]*OperatorEntry),
		opNames:   make(map[string][]*OperatorEntry),
	}
}

// Registry returns the type registry the catalog resolves against.
func (c *Catalog) Registry() *types.Registry {
	return c.reg
}

// Access returns the catalog's access controller.
func (c *Catalog) Access() AccessController {
	return c.access
}

// NextOID hands out a fresh object identifier.
func (c *Catalog) NextOID() OID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextOID
	c.nextOID++
	return id
}

// CreateFunction registers a function entry and returns its identifier.
// A function with the same name and identical argument types is a duplicate.
func (c *Catalog) CreateFunction(f *FunctionEntry) (OID, error) {
	if f.Name == "" {
		return 0, fmt.Errorf("catalog: function name must not be empty")
	}
	if err := f.compile(); err != nil {
		return 0, fmt.Errorf("catalog: function %s: %w", f.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(f.Name)
	for _, existing := range c.funcNames[key] {
		if existing.Namespace == f.Namespace && sameTypes(existing.ArgTypes, f.ArgTypes) {
			return 0, fmt.Errorf("catalog: function %s already exists: %w", f.Signature(c.reg), ErrDuplicate)
		}
	}
	if f.ID == 0 {
		f.ID = c.nextOID
		c.nextOID++
	} else if _, exists := c.functions[f.ID]; exists {
		return 0, fmt.Errorf("catalog: oid %d already in use: %w", f.ID, ErrDuplicate)
	}
	f.Name = key
	c.functions[f.ID] = f
	c.funcNames[key] = append(c.funcNames[key], f)
	return f.ID, nil
}

// DropFunction removes a function entry. Used to undo a placeholder when a
// later registration step fails.
func (c *Catalog) DropFunction(id OID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.functions[id]
	if !ok {
		return
	}
	delete(c.functions, id)
	key := strings.ToLower(f.Name)
	overloads := c.funcNames[key]
	for i, entry := range overloads {
		if entry.ID == id {
			c.funcNames[key] = append(overloads[:i], overloads[i+1:]...)
			break
		}
	}
	if len(c.funcNames[key]) == 0 {
		delete(c.funcNames, key)
	}
}

// Function returns the entry for an identifier.
func (c *Catalog) Function(id OID) (*FunctionEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.functions[id]
	return f, ok
}

// CreateOperator registers an operator entry and returns its identifier.
func (c *Catalog) CreateOperator(op *OperatorEntry) (OID, error) {
	if op.Name == "" {
		return 0, fmt.Errorf("catalog: operator name must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.opNames[op.Name] {
		if existing.Left == op.Left && existing.Right == op.Right {
			return 0, fmt.Errorf("catalog: operator %s(%s,%s) already exists: %w",
				op.Name, c.reg.TypeName(op.Left), c.reg.TypeName(op.Right), ErrDuplicate)
		}
	}
	if op.ID == 0 {
		op.ID = c.nextOID
		c.nextOID++
	}
	c.operators[op.ID] = op
	c.opNames[op.Name] = append(c.opNames[op.Name], op)
	return op.ID, nil
}

// Operator returns the entry for an identifier.
func (c *Catalog) Operator(id OID) (*OperatorEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	op, ok := c.operators[id]
	return op, ok
}

// candidates returns the overloads of name with the given arity. A qualified
// "namespace.name" restricts the match to one namespace.
func (c *Catalog) candidates(name string, nargs int) []*FunctionEntry {
	namespace := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		namespace = name[:i]
		name = name[i+1:]
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*FunctionEntry
	for _, f := range c.funcNames[strings.ToLower(name)] {
		if len(f.ArgTypes) != nargs {
			continue
		}
		if namespace != "" && f.Namespace != namespace {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sameTypes(a, b []types.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
