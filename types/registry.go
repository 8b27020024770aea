/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strings"
	"sync"
)

// Registry 类型注册表。
// 保存类型定义、数组/元素映射以及隐式和二进制转换规则。
type Registry struct {
	mu       sync.RWMutex
	byID     map[ID]*Type
	byName   map[string]*Type
	binary   map[[2]ID]struct{}
	implicit map[[2]ID]struct{}
	nextID   ID
}

// 全局默认注册表，包含所有内置类型
var defaultRegistry = NewRegistry()

// Default returns the process-wide default registry.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry 创建一个新的类型注册表，预置所有内置类型和转换规则。
func NewRegistry() *Registry {
	r := &Registry{
		byID:     make(map[ID]*Type),
		byName:   make(map[string]*Type),
		binary:   make(map[[2]ID]struct{}),
		implicit: make(map[[2]ID]struct{}),
		nextID:   firstUserID,
	}
	r.registerBuiltins()
	return r
}

// Register adds a type to the registry. A zero ID is assigned automatically;
// explicit IDs must not collide with builtin or previously registered ones.
func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(t.Name)
	if name == "" {
		return fmt.Errorf("type name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("type %s already registered", name)
	}
	if t.ID == Invalid {
		t.ID = r.nextID
		r.nextID++
	} else if _, exists := r.byID[t.ID]; exists {
		return fmt.Errorf("type id %d already registered", t.ID)
	}
	t.Name = name
	r.byID[t.ID] = t
	r.byName[name] = t

	// Keep the element side of an array pair in sync.
	if t.Elem != Invalid {
		if elem, ok := r.byID[t.Elem]; ok && elem.Array == Invalid {
			elem.Array = t.ID
		}
	}
	return nil
}

// RegisterEnum registers a user enumeration type together with its array type
// and returns the new element type ID.
func (r *Registry) RegisterEnum(name string) (ID, error) {
	elem := &Type{Name: name, Enum: true, Input: inputText}
	if err := r.Register(elem); err != nil {
		return Invalid, err
	}
	arr := &Type{Name: "_" + name, Elem: elem.ID}
	if err := r.Register(arr); err != nil {
		return Invalid, err
	}
	return elem.ID, nil
}

// Lookup returns the type for id.
func (r *Registry) Lookup(id ID) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// LookupName returns the type registered under name (case-insensitive).
func (r *Registry) LookupName(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

// TypeName returns a human-readable name for id, for diagnostics.
func (r *Registry) TypeName(id ID) string {
	if t, ok := r.Lookup(id); ok {
		return t.Name
	}
	return fmt.Sprintf("type#%d", id)
}

// ElemType returns the element type of an array type, or Invalid when id is
// not an array type.
func (r *Registry) ElemType(id ID) ID {
	if t, ok := r.Lookup(id); ok {
		return t.Elem
	}
	return Invalid
}

// ArrayType returns the array type whose elements are id, or Invalid when no
// such type is registered.
func (r *Registry) ArrayType(id ID) ID {
	if t, ok := r.Lookup(id); ok {
		return t.Array
	}
	return Invalid
}

// IsArray reports whether id is an array type (anyarray included).
func (r *Registry) IsArray(id ID) bool {
	if id == AnyArray {
		return true
	}
	return r.ElemType(id) != Invalid
}

// IsEnum reports whether id is an enumeration type (anyenum included).
func (r *Registry) IsEnum(id ID) bool {
	if id == AnyEnum {
		return true
	}
	if t, ok := r.Lookup(id); ok {
		return t.Enum
	}
	return false
}

// registerBuiltins 注册内置类型、数组映射和内置转换规则。
func (r *Registry) registerBuiltins() {
	builtins := []*Type{
		{ID: Bool, Name: "bool", Array: BoolArray, Input: inputBool},
		{ID: Int2, Name: "int2", Array: Int2Array, Input: inputInt2},
		{ID: Int4, Name: "int4", Array: Int4Array, Input: inputInt4},
		{ID: Int8, Name: "int8", Array: Int8Array, Input: inputInt8},
		{ID: Float4, Name: "float4", Array: Float4Array, Input: inputFloat4},
		{ID: Float8, Name: "float8", Array: Float8Array, Input: inputFloat8},
		{ID: Numeric, Name: "numeric", Array: NumericArray, Input: inputNumeric},
		{ID: Text, Name: "text", Array: TextArray, Input: inputText},
		{ID: VarChar, Name: "varchar", Input: inputText},
		{ID: Bytea, Name: "bytea", Input: inputBytea},
		{ID: Timestamp, Name: "timestamp", Input: inputTimestamp},

		{ID: BoolArray, Name: "_bool", Elem: Bool},
		{ID: Int2Array, Name: "_int2", Elem: Int2},
		{ID: Int4Array, Name: "_int4", Elem: Int4},
		{ID: Int8Array, Name: "_int8", Elem: Int8},
		{ID: Float4Array, Name: "_float4", Elem: Float4},
		{ID: Float8Array, Name: "_float8", Elem: Float8},
		{ID: NumericArray, Name: "_numeric", Elem: Numeric},
		{ID: TextArray, Name: "_text", Elem: Text},

		{ID: Any, Name: "any", Pseudo: true},
		{ID: AnyArray, Name: "anyarray", Pseudo: true},
		{ID: AnyElement, Name: "anyelement", Pseudo: true},
		{ID: AnyNonArray, Name: "anynonarray", Pseudo: true},
		{ID: AnyEnum, Name: "anyenum", Pseudo: true},
		{ID: Internal, Name: "internal", Pseudo: true},
	}
	for _, t := range builtins {
		r.byID[t.ID] = t
		r.byName[t.Name] = t
	}

	// text and varchar share a representation.
	r.binary[[2]ID{VarChar, Text}] = struct{}{}
	r.binary[[2]ID{Text, VarChar}] = struct{}{}

	// Implicit widening conversions. These are legal at call sites but are
	// NOT binary-compatible: choosing such an overload for an aggregate
	// support function is rejected, because the aggregate call path invokes
	// support functions without a coercion step.
	implicit := [][2]ID{
		{Int2, Int4}, {Int2, Int8}, {Int2, Float4}, {Int2, Float8}, {Int2, Numeric},
		{Int4, Int8}, {Int4, Float4}, {Int4, Float8}, {Int4, Numeric},
		{Int8, Float4}, {Int8, Float8}, {Int8, Numeric},
		{Float4, Float8},
		{Numeric, Float4}, {Numeric, Float8},
	}
	for _, p := range implicit {
		r.implicit[p] = struct{}{}
	}
}
