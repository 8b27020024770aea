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

import "fmt"

// ResolvePolymorphic 根据实际参数类型统一函数声明中的多态类型，
// 并返回解析后的结果类型。
//
// ResolvePolymorphic unifies the polymorphic types in a declared parameter
// list against the actual argument types and resolves the declared result
// type. anyelement, anynonarray and anyenum positions must all bind to one
// element type; anyarray positions must all bind to one array type whose
// element type agrees with the bound element type.
//
// Actual types may themselves be polymorphic. In that case the binding stays
// polymorphic and so may the returned result type; callers decide whether an
// unresolved result is acceptable.
func (r *Registry) ResolvePolymorphic(actual, declared []ID, result ID) (ID, error) {
	if len(actual) != len(declared) {
		return Invalid, fmt.Errorf("argument count mismatch: %d actual vs %d declared", len(actual), len(declared))
	}

	var (
		haveGenerics bool
		haveAnyNon   bool
		haveAnyEnum  bool
		elemBinding  = Invalid
		arrayBinding = Invalid
	)

	for i, decl := range declared {
		act := actual[i]
		switch decl {
		case AnyElement, AnyNonArray, AnyEnum:
			haveGenerics = true
			if decl == AnyNonArray {
				haveAnyNon = true
			} else if decl == AnyEnum {
				haveAnyEnum = true
			}
			if act == decl {
				continue // 无新信息
			}
			if elemBinding != Invalid && act != elemBinding {
				return Invalid, fmt.Errorf("arguments declared anyelement are not all alike: %s vs %s",
					r.TypeName(elemBinding), r.TypeName(act))
			}
			elemBinding = act
		case AnyArray:
			haveGenerics = true
			if act == decl {
				continue
			}
			if arrayBinding != Invalid && act != arrayBinding {
				return Invalid, fmt.Errorf("arguments declared anyarray are not all alike: %s vs %s",
					r.TypeName(arrayBinding), r.TypeName(act))
			}
			arrayBinding = act
		}
	}

	if !haveGenerics {
		return result, nil
	}

	if arrayBinding != Invalid {
		if arrayBinding == AnyArray {
			if elemBinding != Invalid {
				return Invalid, fmt.Errorf("argument declared anyarray is not consistent with argument declared anyelement: anyarray vs %s",
					r.TypeName(elemBinding))
			}
		} else {
			elem := r.ElemType(arrayBinding)
			if elem == Invalid {
				return Invalid, fmt.Errorf("argument declared anyarray is not an array but type %s", r.TypeName(arrayBinding))
			}
			if elemBinding == Invalid {
				elemBinding = elem
			} else if elem != elemBinding {
				return Invalid, fmt.Errorf("argument declared anyarray is not consistent with argument declared anyelement: %s vs %s",
					r.TypeName(arrayBinding), r.TypeName(elemBinding))
			}
		}
	}

	if haveAnyNon && elemBinding != Invalid && elemBinding != AnyElement {
		if r.IsArray(elemBinding) {
			return Invalid, fmt.Errorf("type matched to anynonarray is an array type: %s", r.TypeName(elemBinding))
		}
	}
	if haveAnyEnum && elemBinding != Invalid && elemBinding != AnyElement {
		if !r.IsEnum(elemBinding) {
			return Invalid, fmt.Errorf("type matched to anyenum is not an enum type: %s", r.TypeName(elemBinding))
		}
	}

	switch result {
	case AnyElement, AnyNonArray, AnyEnum:
		if elemBinding == Invalid {
			return result, nil // 结果保持多态
		}
		return elemBinding, nil
	case AnyArray:
		if arrayBinding == Invalid || arrayBinding == AnyArray {
			if elemBinding == Invalid || elemBinding == AnyElement {
				return result, nil
			}
			arr := r.ArrayType(elemBinding)
			if arr == Invalid {
				return Invalid, fmt.Errorf("could not find array type for data type %s", r.TypeName(elemBinding))
			}
			return arr, nil
		}
		return arrayBinding, nil
	}
	return result, nil
}
