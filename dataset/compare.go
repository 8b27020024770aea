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
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/rulego/setagg/types"
)

// Compare 按类型比较两个 datum。NULL 排在所有非 NULL 值之后，两个 NULL 相等。
// Compare orders two datums of the given type. NULL sorts after every
// non-NULL value and two NULLs compare equal.
func Compare(reg *types.Registry, typ types.ID, a, b Datum) (int, error) {
	if a.Null || b.Null {
		switch {
		case a.Null && b.Null:
			return 0, nil
		case a.Null:
			return 1, nil
		default:
			return -1, nil
		}
	}
	return compareValues(reg, typ, a.Value, b.Value)
}

// Equal 判断两个 datum 在给定类型下是否相等。两个 NULL 视为相等
// （即 IS NOT DISTINCT FROM 语义，用于去重而非谓词求值）。
func Equal(reg *types.Registry, typ types.ID, a, b Datum) (bool, error) {
	if a.Null || b.Null {
		return a.Null == b.Null, nil
	}
	c, err := compareValues(reg, typ, a.Value, b.Value)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

func compareValues(reg *types.Registry, typ types.ID, a, b interface{}) (int, error) {
	switch typ {
	case types.Bool:
		av, err := cast.ToBoolE(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToBoolE(b)
		if err != nil {
			return 0, err
		}
		if av == bv {
			return 0, nil
		}
		if !av {
			return -1, nil
		}
		return 1, nil
	case types.Int2, types.Int4, types.Int8:
		av, err := cast.ToInt64E(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToInt64E(b)
		if err != nil {
			return 0, err
		}
		return compareInt64(av, bv), nil
	case types.Float4, types.Float8:
		av, err := cast.ToFloat64E(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToFloat64E(b)
		if err != nil {
			return 0, err
		}
		return compareFloat64(av, bv), nil
	case types.Numeric:
		av, err := toDecimal(a)
		if err != nil {
			return 0, err
		}
		bv, err := toDecimal(b)
		if err != nil {
			return 0, err
		}
		return av.Cmp(bv), nil
	case types.Text, types.VarChar:
		av, err := cast.ToStringE(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToStringE(b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(av, bv), nil
	case types.Bytea:
		av, ok := a.([]byte)
		if !ok {
			return 0, fmt.Errorf("bytea value has unexpected representation %T", a)
		}
		bv, ok := b.([]byte)
		if !ok {
			return 0, fmt.Errorf("bytea value has unexpected representation %T", b)
		}
		return bytes.Compare(av, bv), nil
	case types.Timestamp:
		av, err := cast.ToTimeE(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToTimeE(b)
		if err != nil {
			return 0, err
		}
		switch {
		case av.Before(bv):
			return -1, nil
		case av.After(bv):
			return 1, nil
		default:
			return 0, nil
		}
	}

	if elem := reg.ElemType(typ); elem != types.Invalid {
		return compareArrays(reg, elem, a, b)
	}
	if reg.IsEnum(typ) {
		av, err := cast.ToStringE(a)
		if err != nil {
			return 0, err
		}
		bv, err := cast.ToStringE(b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(av, bv), nil
	}
	return 0, fmt.Errorf("type %s has no ordering", reg.TypeName(typ))
}

// compareArrays 对数组做逐元素字典序比较，较短的前缀排在前面。
func compareArrays(reg *types.Registry, elem types.ID, a, b interface{}) (int, error) {
	av, ok := a.([]interface{})
	if !ok {
		return 0, fmt.Errorf("array value has unexpected representation %T", a)
	}
	bv, ok := b.([]interface{})
	if !ok {
		return 0, fmt.Errorf("array value has unexpected representation %T", b)
	}
	n := len(av)
	if len(bv) < n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		c, err := compareValues(reg, elem, av[i], bv[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return compareInt64(int64(len(av)), int64(len(bv))), nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		return decimal.NewFromString(d)
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int32:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	case float32:
		return decimal.NewFromFloat(float64(d)), nil
	case float64:
		return decimal.NewFromFloat(d), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("numeric value has unexpected representation %T", v)
	}
}
