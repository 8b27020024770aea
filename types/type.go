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

// Package types 实现 setagg 的类型系统。
//
// 提供类型标识（ID）、类型注册表、多态类型统一（anyelement/anyarray 等）、
// 隐式与二进制兼容转换规则，以及文本形式的输入转换。聚合定义校验器和
// 运行时求值器都建立在这个包之上。
package types

// ID identifies a type in the registry. IDs are persisted in catalog rows,
// so the builtin assignments below are stable and must not be renumbered.
type ID uint32

// Builtin type IDs.
const (
	Invalid ID = 0

	// Scalar types.
	Bool      ID = 1
	Int2      ID = 2
	Int4      ID = 3
	Int8      ID = 4
	Float4    ID = 5
	Float8    ID = 6
	Numeric   ID = 7
	Text      ID = 8
	VarChar   ID = 9
	Bytea     ID = 10
	Timestamp ID = 11

	// Array types.
	BoolArray    ID = 21
	Int2Array    ID = 22
	Int4Array    ID = 23
	Int8Array    ID = 24
	Float4Array  ID = 25
	Float8Array  ID = 26
	NumericArray ID = 27
	TextArray    ID = 28

	// Pseudo-types.
	Any         ID = 40
	AnyArray    ID = 41
	AnyElement  ID = 42
	AnyNonArray ID = 43
	AnyEnum     ID = 44
	Internal    ID = 45

	// firstUserID is where caller-registered types start when no explicit
	// ID is supplied.
	firstUserID ID = 100
)

// Type describes one entry in the type registry.
type Type struct {
	ID   ID
	Name string
	// Elem is the element type when this type is an array type.
	Elem ID
	// Array is the array type whose element type is this type.
	Array ID
	// Pseudo marks types that cannot be stored (any, anyarray, internal, ...).
	Pseudo bool
	// Enum marks user-registered enumeration types.
	Enum bool
	// Input parses the text form of a value of this type into its runtime
	// representation. Nil means the type has no text input conversion.
	Input func(s string) (interface{}, error)
}

// IsPolymorphic 判断类型是否为多态伪类型。
// 注意 "any" 不属于多态类型：它接受任意实参，但不参与类型统一，
// 也不能用于推导其他位置的具体类型。
func IsPolymorphic(id ID) bool {
	switch id {
	case AnyElement, AnyArray, AnyNonArray, AnyEnum:
		return true
	default:
		return false
	}
}

// IsPseudo reports whether id is one of the builtin pseudo-types.
func IsPseudo(id ID) bool {
	switch id {
	case Any, AnyArray, AnyElement, AnyNonArray, AnyEnum, Internal:
		return true
	default:
		return false
	}
}
