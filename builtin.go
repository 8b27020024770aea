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

package setagg

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/rulego/setagg/aggdef"
	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/hypothetical"
	"github.com/rulego/setagg/types"
)

// builtinNamespace 内建函数、操作符与聚合所在的命名空间。
// 非限定名解析会跨命名空间查找，所以内建聚合不会挡住用户在
// public 里注册同名聚合，反之亦然。
const builtinNamespace = "pg_catalog"

// builtinPrincipal 装载内建目录时使用的主体。
var builtinPrincipal = catalog.Principal{Name: "setagg", Superuser: true}

// installBuiltins 装载内建目录：支撑函数、排序操作符、内建聚合。
// 内建聚合走与用户定义完全相同的 Define 管线；任何失败都是装载
// 代码自身的缺陷，直接 panic。
func (s *Setagg) installBuiltins() {
	s.builtinFunctions()
	s.builtinOperators()
	s.builtinAggregates()
}

func (s *Setagg) builtinFunctions() {
	entries := []*catalog.FunctionEntry{
		{Name: "int8pl", ArgTypes: []types.ID{types.Int8, types.Int8}, ReturnType: types.Int8,
			Strict: true, Expr: "args[0] + args[1]"},
		{Name: "float8pl", ArgTypes: []types.ID{types.Float8, types.Float8}, ReturnType: types.Float8,
			Strict: true, Expr: "args[0] + args[1]"},
		{Name: "numeric_add", ArgTypes: []types.ID{types.Numeric, types.Numeric}, ReturnType: types.Numeric,
			Strict: true, Native: numericAdd},
		{Name: "int8inc", ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int8,
			Strict: true, Native: int8inc},
		{Name: "int8inc_any", ArgTypes: []types.ID{types.Int8, types.Any}, ReturnType: types.Int8,
			Strict: true, Native: int8incAny},
		{Name: "int8larger", ArgTypes: []types.ID{types.Int8, types.Int8}, ReturnType: types.Int8,
			Strict: true, Expr: "args[0] > args[1] ? args[0] : args[1]"},
		{Name: "float8larger", ArgTypes: []types.ID{types.Float8, types.Float8}, ReturnType: types.Float8,
			Strict: true, Expr: "args[0] > args[1] ? args[0] : args[1]"},
		{Name: "text_larger", ArgTypes: []types.ID{types.Text, types.Text}, ReturnType: types.Text,
			Strict: true, Expr: "args[0] > args[1] ? args[0] : args[1]"},
		{Name: "avg_accum", ArgTypes: []types.ID{types.Float8Array, types.Float8}, ReturnType: types.Float8Array,
			Native: avgAccum},
		{Name: "avg_final", ArgTypes: []types.ID{types.Float8Array}, ReturnType: types.Float8,
			Native: avgFinal},
		{Name: "mode_final", ArgTypes: []types.ID{types.AnyElement}, ReturnType: types.AnyElement,
			Native: modeFinal},
		{Name: "rank_final", ArgTypes: []types.ID{types.Any}, ReturnType: types.Int8,
			ArgModes: "v", Variadic: types.Any, Native: rankFinal},
		{Name: "dense_rank_final", ArgTypes: []types.ID{types.Any}, ReturnType: types.Int8,
			ArgModes: "v", Variadic: types.Any, Native: denseRankFinal},
		{Name: "percent_rank_final", ArgTypes: []types.ID{types.Any}, ReturnType: types.Float8,
			ArgModes: "v", Variadic: types.Any, Native: percentRankFinal},
		{Name: "cume_dist_final", ArgTypes: []types.ID{types.Any}, ReturnType: types.Float8,
			ArgModes: "v", Variadic: types.Any, Native: cumeDistFinal},
	}
	for _, f := range entries {
		f.Namespace = builtinNamespace
		if _, err := s.catalog.CreateFunction(f); err != nil {
			panic(fmt.Sprintf("setagg: builtin function %s: %v", f.Name, err))
		}
	}
}

func (s *Setagg) builtinOperators() {
	ordered := []types.ID{
		types.Int2, types.Int4, types.Int8,
		types.Float4, types.Float8, types.Numeric,
		types.Text, types.Timestamp,
	}
	for _, t := range ordered {
		for _, name := range []string{"<", ">"} {
			op := &catalog.OperatorEntry{Name: name, Left: t, Right: t}
			if _, err := s.catalog.CreateOperator(op); err != nil {
				panic(fmt.Sprintf("setagg: builtin operator %s: %v", name, err))
			}
		}
	}
}

func (s *Setagg) builtinAggregates() {
	zero := "0"
	defs := []*aggdef.Definition{
		{Name: "count", DirectArgs: -1,
			TransFunc: "pg_catalog.int8inc", TransType: types.Int8, InitValue: &zero},
		{Name: "count", Args: []aggdef.Arg{{Name: "value", Type: types.Any}}, DirectArgs: -1,
			TransFunc: "pg_catalog.int8inc_any", TransType: types.Int8, InitValue: &zero},
		{Name: "sum", Args: []aggdef.Arg{{Name: "x", Type: types.Int8}}, DirectArgs: -1,
			TransFunc: "pg_catalog.int8pl", TransType: types.Int8},
		{Name: "sum", Args: []aggdef.Arg{{Name: "x", Type: types.Float8}}, DirectArgs: -1,
			TransFunc: "pg_catalog.float8pl", TransType: types.Float8},
		{Name: "sum", Args: []aggdef.Arg{{Name: "x", Type: types.Numeric}}, DirectArgs: -1,
			TransFunc: "pg_catalog.numeric_add", TransType: types.Numeric},
		{Name: "max", Args: []aggdef.Arg{{Name: "x", Type: types.Int8}}, DirectArgs: -1,
			TransFunc: "pg_catalog.int8larger", TransType: types.Int8, SortOp: ">"},
		{Name: "max", Args: []aggdef.Arg{{Name: "x", Type: types.Float8}}, DirectArgs: -1,
			TransFunc: "pg_catalog.float8larger", TransType: types.Float8, SortOp: ">"},
		{Name: "max", Args: []aggdef.Arg{{Name: "x", Type: types.Text}}, DirectArgs: -1,
			TransFunc: "pg_catalog.text_larger", TransType: types.Text, SortOp: ">"},
		{Name: "avg", Args: []aggdef.Arg{{Name: "x", Type: types.Float8}}, DirectArgs: -1,
			TransFunc: "pg_catalog.avg_accum", FinalFunc: "pg_catalog.avg_final", TransType: types.Float8Array},
		{Name: "mode", Args: []aggdef.Arg{{Name: "value", Type: types.AnyElement}}, DirectArgs: 0,
			FinalFunc: "pg_catalog.mode_final"},
		{Name: "rank", Args: []aggdef.Arg{{Name: "args", Type: types.Any, Mode: aggdef.Variadic}},
			DirectArgs: 1, Hypothetical: true, FinalFunc: "pg_catalog.rank_final"},
		{Name: "dense_rank", Args: []aggdef.Arg{{Name: "args", Type: types.Any, Mode: aggdef.Variadic}},
			DirectArgs: 1, Hypothetical: true, FinalFunc: "pg_catalog.dense_rank_final"},
		{Name: "percent_rank", Args: []aggdef.Arg{{Name: "args", Type: types.Any, Mode: aggdef.Variadic}},
			DirectArgs: 1, Hypothetical: true, FinalFunc: "pg_catalog.percent_rank_final"},
		{Name: "cume_dist", Args: []aggdef.Arg{{Name: "args", Type: types.Any, Mode: aggdef.Variadic}},
			DirectArgs: 1, Hypothetical: true, FinalFunc: "pg_catalog.cume_dist_final"},
	}
	for _, def := range defs {
		def.Namespace = builtinNamespace
		if _, err := s.definer.Define(builtinPrincipal, def); err != nil {
			panic(fmt.Sprintf("setagg: builtin aggregate %s: %v", def.Name, err))
		}
	}
}

func int8inc(_ *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	n, err := cast.ToInt64E(args[0].Value)
	if err != nil {
		return dataset.Null(), fmt.Errorf("int8inc: %w", err)
	}
	return dataset.NewDatum(n + 1), nil
}

// int8incAny 忽略被计数的值本身，严格声明已经滤掉了 NULL 行。
func int8incAny(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	return int8inc(ctx, args[:1])
}

func numericAdd(_ *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	a, err := asDecimal(args[0].Value)
	if err != nil {
		return dataset.Null(), fmt.Errorf("numeric_add: %w", err)
	}
	b, err := asDecimal(args[1].Value)
	if err != nil {
		return dataset.Null(), fmt.Errorf("numeric_add: %w", err)
	}
	return dataset.NewDatum(a.Add(b)), nil
}

func asDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("value %T is not numeric", v)
		}
		return decimal.NewFromFloat(f), nil
	}
}

// avgAccum 的转移值是 [count, sum] 两元素数组。函数不严格，空初始
// 状态（NULL）由函数自身替换成零值；NULL 输入行在这里跳过。
func avgAccum(_ *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	state, x := args[0], args[1]
	if x.IsNull() {
		return state, nil
	}
	var count int64
	var sum float64
	if !state.IsNull() {
		parts, ok := state.Value.([]interface{})
		if !ok || len(parts) != 2 {
			return dataset.Null(), fmt.Errorf("avg_accum: malformed transition value %T", state.Value)
		}
		count, _ = parts[0].(int64)
		sum, _ = parts[1].(float64)
	}
	v, err := cast.ToFloat64E(x.Value)
	if err != nil {
		return dataset.Null(), fmt.Errorf("avg_accum: %w", err)
	}
	return dataset.NewDatum([]interface{}{count + 1, sum + v}), nil
}

func avgFinal(_ *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	state := args[0]
	if state.IsNull() {
		return dataset.Null(), nil
	}
	parts, ok := state.Value.([]interface{})
	if !ok || len(parts) != 2 {
		return dataset.Null(), fmt.Errorf("avg_final: malformed transition value %T", state.Value)
	}
	count, _ := parts[0].(int64)
	if count == 0 {
		return dataset.Null(), nil
	}
	sum, _ := parts[1].(float64)
	return dataset.NewDatum(sum / float64(count)), nil
}

// sortContextOf 取出调用上下文携带的排序上下文。有序集聚合的终函数
// 只能对着排序好的分组求值。
func sortContextOf(ctx *catalog.CallContext, name string) (hypothetical.SortContext, error) {
	sc, ok := ctx.SortContext.(hypothetical.SortContext)
	if !ok {
		return nil, fmt.Errorf("%s: ordered-set final function requires a sort context", name)
	}
	return sc, nil
}

// modeFinal 返回分组里出现次数最多的值。有序列是分组行的 0 号列；
// NULL 不参与，并列时取排序序里最先出现的值。
func modeFinal(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	sc, err := sortContextOf(ctx, "mode")
	if err != nil {
		return dataset.Null(), err
	}
	if err := sc.Sort(); err != nil {
		return dataset.Null(), fmt.Errorf("mode: %w", err)
	}
	best := dataset.Null()
	bestRun := 0
	run := 0
	for i := 0; i < sc.Len(); i++ {
		if i == 0 {
			run = 1
		} else {
			eq, err := sc.RowsEqual(sc.Row(i-1), sc.Row(i), []int{0})
			if err != nil {
				return dataset.Null(), fmt.Errorf("mode: %w", err)
			}
			if eq {
				run++
			} else {
				run = 1
			}
		}
		value := sc.Row(i)[0]
		if value.IsNull() {
			continue
		}
		if run > bestRun {
			bestRun = run
			best = value
		}
	}
	return best, nil
}

func rankFinal(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	sc, err := sortContextOf(ctx, "rank")
	if err != nil {
		return dataset.Null(), err
	}
	r, err := hypothetical.Rank(sc, ctx.ArgTypes, args)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.NewDatum(r), nil
}

func denseRankFinal(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	sc, err := sortContextOf(ctx, "dense_rank")
	if err != nil {
		return dataset.Null(), err
	}
	r, err := hypothetical.DenseRank(sc, ctx.ArgTypes, args)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.NewDatum(r), nil
}

func percentRankFinal(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	sc, err := sortContextOf(ctx, "percent_rank")
	if err != nil {
		return dataset.Null(), err
	}
	r, err := hypothetical.PercentRank(sc, ctx.ArgTypes, args)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.NewDatum(r), nil
}

func cumeDistFinal(ctx *catalog.CallContext, args []dataset.Datum) (dataset.Datum, error) {
	sc, err := sortContextOf(ctx, "cume_dist")
	if err != nil {
		return dataset.Null(), err
	}
	r, err := hypothetical.CumeDist(sc, ctx.ArgTypes, args)
	if err != nil {
		return dataset.Null(), err
	}
	return dataset.NewDatum(r), nil
}
