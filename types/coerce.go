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

// RegisterBinaryCoercion declares src values to be usable as dst without any
// conversion at runtime. Both directions must be registered separately.
func (r *Registry) RegisterBinaryCoercion(src, dst ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binary[[2]ID{src, dst}] = struct{}{}
}

// RegisterImplicitCoercion declares that a src value may be implicitly
// converted to dst when matching call arguments to declared parameters.
func (r *Registry) RegisterImplicitCoercion(src, dst ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.implicit[[2]ID{src, dst}] = struct{}{}
}

// BinaryCoercible 判断 src 类型的值是否可以不经转换直接当作 dst 类型使用。
// BinaryCoercible reports whether a value of src can be used as dst with no
// runtime conversion at all.
func (r *Registry) BinaryCoercible(src, dst ID) bool {
	if src == dst {
		return true
	}
	switch dst {
	case Any:
		return true
	case AnyArray:
		return r.IsArray(src)
	case AnyNonArray:
		return !r.IsArray(src)
	case AnyEnum:
		return r.IsEnum(src)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.binary[[2]ID{src, dst}]
	return ok
}

// ImplicitCoercible reports whether src can be converted to dst implicitly
// when matching a call against a declared parameter list. Binary coercions
// are a subset of implicit ones.
func (r *Registry) ImplicitCoercible(src, dst ID) bool {
	if r.BinaryCoercible(src, dst) {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.implicit[[2]ID{src, dst}]
	return ok
}
