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

// Package tuplesort 实现聚合分组使用的内存行排序上下文。
// Package tuplesort implements the in-memory sorted row working set consumed
// by set-ordered aggregate evaluation. A Context is owned by exactly one
// group evaluation at a time and needs no internal locking.
package tuplesort

import (
	"fmt"
	"sort"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

// SortKey 一个排序列：列下标、方向与 NULL 位置。
type SortKey struct {
	Column     int
	Desc       bool
	NullsFirst bool
}

// Context 一个分组的行工作集。行先收集，再整体排序，之后按序访问。
type Context struct {
	reg    *types.Registry
	shape  *dataset.Shape
	keys   []SortKey
	rows   []dataset.Row
	sorted bool
}

// New creates a sort context for rows of the given shape ordered by keys.
func New(reg *types.Registry, shape *dataset.Shape, keys []SortKey) (*Context, error) {
	if reg == nil {
		return nil, fmt.Errorf("tuplesort: registry must not be nil")
	}
	if shape == nil || shape.NumColumns() == 0 {
		return nil, fmt.Errorf("tuplesort: shape must have at least one column")
	}
	for _, k := range keys {
		if k.Column < 0 || k.Column >= shape.NumColumns() {
			return nil, fmt.Errorf("tuplesort: sort key column %d out of range for %d columns", k.Column, shape.NumColumns())
		}
	}
	return &Context{reg: reg, shape: shape, keys: keys}, nil
}

// Shape returns the row shape of the context.
func (c *Context) Shape() *dataset.Shape {
	return c.shape
}

// Keys returns the declared ordering.
func (c *Context) Keys() []SortKey {
	return c.keys
}

// Len returns the number of rows currently in the working set.
func (c *Context) Len() int {
	return len(c.rows)
}

// Push appends a row to the working set. The set becomes unsorted until the
// next Sort call.
func (c *Context) Push(row dataset.Row) error {
	if len(row) != c.shape.NumColumns() {
		return fmt.Errorf("tuplesort: row has %d columns, shape has %d", len(row), c.shape.NumColumns())
	}
	c.rows = append(c.rows, row)
	c.sorted = false
	return nil
}

// Sort orders the working set by the declared keys. The sort is stable so
// rows that compare equal keep their insertion order.
func (c *Context) Sort() error {
	var sortErr error
	sort.SliceStable(c.rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		cmp, err := c.CompareRows(c.rows[i], c.rows[j])
		if err != nil {
			sortErr = err
			return false
		}
		return cmp < 0
	})
	if sortErr != nil {
		return sortErr
	}
	c.sorted = true
	return nil
}

// Sorted reports whether the working set is ordered.
func (c *Context) Sorted() bool {
	return c.sorted
}

// Row returns the i-th row in current order.
func (c *Context) Row(i int) dataset.Row {
	return c.rows[i]
}

// Remove deletes the i-th row, preserving the order of the remainder.
func (c *Context) Remove(i int) {
	if i < 0 || i >= len(c.rows) {
		return
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
}

// Reset drops all rows so the context can collect the next group.
func (c *Context) Reset() {
	c.rows = c.rows[:0]
	c.sorted = false
}

// CompareRows orders two rows by the declared sort keys.
func (c *Context) CompareRows(a, b dataset.Row) (int, error) {
	for _, k := range c.keys {
		cmp, err := dataset.Compare(c.reg, c.shape.ColumnType(k.Column), a[k.Column], b[k.Column])
		if err != nil {
			return 0, err
		}
		if cmp == 0 {
			continue
		}
		// dataset.Compare 默认 NULL 排在最后，这里按键方向调整。
		aNull := a[k.Column].IsNull()
		bNull := b[k.Column].IsNull()
		if aNull || bNull {
			if k.NullsFirst {
				cmp = -cmp
			}
			return cmp, nil
		}
		if k.Desc {
			cmp = -cmp
		}
		return cmp, nil
	}
	return 0, nil
}

// RowsEqual compares two rows for equality on the given column subset using
// the shape's column types. NULLs compare equal to each other.
func (c *Context) RowsEqual(a, b dataset.Row, columns []int) (bool, error) {
	for _, col := range columns {
		if col < 0 || col >= c.shape.NumColumns() {
			return false, fmt.Errorf("tuplesort: column %d out of range for %d columns", col, c.shape.NumColumns())
		}
		eq, err := dataset.Equal(c.reg, c.shape.ColumnType(col), a[col], b[col])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}
