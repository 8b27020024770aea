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
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// 内置类型的文本输入函数。
// 整数类型统一以 int64 表示，浮点以 float64 表示，numeric 以 decimal.Decimal 表示。

func inputBool(s string) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "yes", "on", "1":
		return true, nil
	case "f", "false", "no", "off", "0":
		return false, nil
	}
	return nil, fmt.Errorf("invalid input syntax for type bool: %q", s)
}

func inputInt2(s string) (interface{}, error) {
	v, err := cast.ToInt64E(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type int2: %q", s)
	}
	if v < math.MinInt16 || v > math.MaxInt16 {
		return nil, fmt.Errorf("value %d out of range for type int2", v)
	}
	return v, nil
}

func inputInt4(s string) (interface{}, error) {
	v, err := cast.ToInt64E(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type int4: %q", s)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("value %d out of range for type int4", v)
	}
	return v, nil
}

func inputInt8(s string) (interface{}, error) {
	v, err := cast.ToInt64E(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type int8: %q", s)
	}
	return v, nil
}

func inputFloat4(s string) (interface{}, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type float4: %q", s)
	}
	if !math.IsInf(v, 0) && (v > math.MaxFloat32 || v < -math.MaxFloat32) {
		return nil, fmt.Errorf("value %q out of range for type float4", s)
	}
	return v, nil
}

func inputFloat8(s string) (interface{}, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type float8: %q", s)
	}
	return v, nil
}

func inputNumeric(s string) (interface{}, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input syntax for type numeric: %q", s)
	}
	return d, nil
}

func inputText(s string) (interface{}, error) {
	return s, nil
}

func inputBytea(s string) (interface{}, error) {
	if strings.HasPrefix(s, `\x`) {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hexadecimal data for type bytea: %q", s)
		}
		return b, nil
	}
	return []byte(s), nil
}

// timestampLayouts 按尝试顺序排列的时间戳解析格式
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// inputTimestamp 解析时间戳文本。"now" 在调用时刻求值，
// 因此初始值文本必须在每次聚合启动时重新解释，而不是在定义时解析一次。
func inputTimestamp(s string) (interface{}, error) {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, "now") {
		return time.Now(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("invalid input syntax for type timestamp: %q", s)
}
