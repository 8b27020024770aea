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

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulego/setagg/types"
)

func TestDatum(t *testing.T) {
	d := NewDatum(int64(7))
	assert.False(t, d.IsNull())
	assert.Equal(t, int64(7), d.Value)

	assert.True(t, NewDatum(nil).IsNull())
	assert.True(t, Null().IsNull())
	assert.Nil(t, Null().Value)
}

func TestNewRow(t *testing.T) {
	row := NewRow(int64(1), "a", nil, NewDatum(true), Null())
	assert.Len(t, row, 5)
	assert.Equal(t, int64(1), row[0].Value)
	assert.Equal(t, "a", row[1].Value)
	assert.True(t, row[2].IsNull())
	assert.Equal(t, true, row[3].Value)
	assert.True(t, row[4].IsNull())
}

func TestRowClone(t *testing.T) {
	row := NewRow(int64(1), int64(2))
	clone := row.Clone()
	clone[0] = NewDatum(int64(99))
	assert.Equal(t, int64(1), row[0].Value)

	assert.Nil(t, Row(nil).Clone())
}

func TestShape(t *testing.T) {
	s := NewShape(
		Column{Name: "v", Type: types.Int4},
		Column{Name: "flag", Type: types.Bool},
	)
	assert.Equal(t, 2, s.NumColumns())
	assert.Equal(t, "flag", s.Column(1).Name)
	assert.Equal(t, types.Int4, s.ColumnType(0))
	assert.Equal(t, types.Invalid, s.ColumnType(2))
	assert.Equal(t, types.Invalid, s.ColumnType(-1))

	var nilShape *Shape
	assert.Equal(t, 0, nilShape.NumColumns())
	assert.Equal(t, types.Invalid, nilShape.ColumnType(0))
}
