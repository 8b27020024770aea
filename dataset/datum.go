/*
 * Copyright 2024 The RuleGo Authors.
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

// Package dataset 提供聚合求值使用的行与值表示。
// Package dataset provides the row and value representation used during
// aggregate evaluation.
package dataset

// Datum 单个列值，显式携带 NULL 标记。
type Datum struct {
	Value interface{}
	Null  bool
}

// NewDatum wraps a value; a nil value becomes the NULL datum.
func NewDatum(v interface{}) Datum {
	if v == nil {
		return Datum{Null: true}
	}
	return Datum{Value: v}
}

// Null returns the NULL datum.
func Null() Datum {
	return Datum{Null: true}
}

// IsNull reports whether the datum is NULL.
func (d Datum) IsNull() bool {
	return d.Null
}
