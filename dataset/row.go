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

package dataset

import "github.com/rulego/setagg/types"

// Row 一行按列序排列的值。
type Row []Datum

// NewRow builds a row from plain values; nil entries become NULL datums and
// Datum entries are taken as-is.
func NewRow(values ...interface{}) Row {
	r := make(Row, 0, len(values))
	for _, v := range values {
		if d, ok := v.(Datum); ok {
			r = append(r, d)
			continue
		}
		r = append(r, NewDatum(v))
	}
	return r
}

// Clone returns a copy of the row. Datum values are shared, which is safe
// because datums are never mutated in place.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	copy(c, r)
	return c
}

// Column 行形状中的一列：名称加类型。
type Column struct {
	Name string
	Type types.ID
}

// Shape 描述一行的列布局。
type Shape struct {
	Columns []Column
}

// NewShape builds a shape from a column list.
func NewShape(columns ...Column) *Shape {
	return &Shape{Columns: columns}
}

// NumColumns returns the number of columns in the shape.
func (s *Shape) NumColumns() int {
	if s == nil {
		return 0
	}
	return len(s.Columns)
}

// Column returns the i-th column descriptor.
func (s *Shape) Column(i int) Column {
	return s.Columns[i]
}

// ColumnType returns the type of the i-th column, or types.Invalid when the
// index is out of range.
func (s *Shape) ColumnType(i int) types.ID {
	if s == nil || i < 0 || i >= len(s.Columns) {
		return types.Invalid
	}
	return s.Columns[i].Type
}
