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

/*
Package setagg 是一个聚合函数定义引擎，支持普通聚合、有序集聚合与假想集聚合。

Setagg 提供聚合定义的完整校验与目录注册管线：支撑函数解析、隐式/二进制
类型转换、多态类型统一、初始值检查、依赖登记，以及假想集聚合（rank、
dense_rank、percent_rank、cume_dist）对排序分组的求值运行时。

# 核心特性

• 三种聚合形状 - 普通、有序集（固定/可变直接参数）、假想集
• 完整定义校验 - 支撑函数签名解析、转移类型检查、初始值输入检查
• 多态类型统一 - anyelement/anyarray/anynonarray/anyenum 按实参统一
• 隐式与二进制转换 - 候选唯一时降级为运行期转换，歧义即报错
• 可插拔目录存储 - 进程内存储或经 pgxstore 持久化到 PostgreSQL
• 内建聚合目录 - count/sum/avg/max/mode/rank 族走同一条定义管线

# 入门示例

定义并运行一个普通聚合：

	package main

	import (
		"fmt"

		"github.com/rulego/setagg"
		"github.com/rulego/setagg/aggdef"
		"github.com/rulego/setagg/catalog"
		"github.com/rulego/setagg/dataset"
		"github.com/rulego/setagg/types"
	)

	func main() {
		engine := setagg.New()
		alice := catalog.Principal{Name: "alice"}

		// CREATE AGGREGATE sum8(int8) (SFUNC = int8pl, STYPE = int8)
		desc, err := engine.Define(alice, &aggdef.Definition{
			Name:       "sum8",
			Args:       []aggdef.Arg{{Name: "x", Type: types.Int8}},
			DirectArgs: -1,
			TransFunc:  "int8pl",
			TransType:  types.Int8,
		})
		if err != nil {
			panic(err)
		}

		acc, _ := engine.NewAccumulator(desc)
		for _, v := range []int64{3, 1, 4} {
			_ = acc.Add(dataset.NewDatum(v))
		}
		result, _ := acc.Result()
		fmt.Println(result.Value) // 8
	}

假想集聚合对排序分组求值：

	// 行形状：有序列在前，末尾跟一个布尔探针标记列
	engine := setagg.New()
	shape := dataset.NewShape(
		dataset.Column{Name: "score", Type: types.Int8},
		dataset.Column{Name: "probe", Type: types.Bool},
	)
	sc, _ := engine.NewSortContext(shape, []tuplesort.SortKey{{Column: 0}})
	for _, v := range []int64{10, 20, 30} {
		_ = sc.Push(dataset.NewRow(v, nil))
	}
	rank, _ := engine.Rank(sc, []types.ID{types.Int8}, []dataset.Datum{dataset.NewDatum(int64(25))})
	fmt.Println(rank) // 3

# 目录持久化

传入 pgxstore 存储即可把聚合目录写进 PostgreSQL：

	conn, _ := pgx.Connect(ctx, dsn)
	store := pgxstore.New(conn)
	_ = store.EnsureSchema(ctx)
	engine := setagg.New(setagg.WithStore(store))

更多示例见 examples/ 目录。
*/
package setagg
