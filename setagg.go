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
	"github.com/rulego/setagg/aggdef"
	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/hypothetical"
	"github.com/rulego/setagg/logger"
	"github.com/rulego/setagg/tuplesort"
	"github.com/rulego/setagg/types"
)

// Setagg 是聚合定义引擎的主入口。
// 它把类型注册表、函数/操作符目录、聚合行存储和依赖图装配成
// 一条完整的定义管线，并预置内建类型、支撑函数与内建聚合。
//
// 使用示例:
//
//	engine := setagg.New()
//	desc, err := engine.Define(principal, &aggdef.Definition{
//		Name:      "sum8",
//		Args:      []aggdef.Arg{{Name: "x", Type: types.Int8}},
//		DirectArgs: -1,
//		TransFunc: "int8pl",
//		TransType: types.Int8,
//	})
type Setagg struct {
	registry *types.Registry
	catalog  *catalog.Catalog
	store    catalog.Store
	deps     catalog.DependencyRecorder
	definer  *aggdef.Definer

	access       catalog.AccessController
	skipBuiltins bool
}

// New 创建一个新的 Setagg 实例。
// 未显式配置的协作者使用进程内实现：全新的类型注册表、内存聚合行
// 存储和内存依赖图。除非 WithoutBuiltins，内建目录在这里装载。
//
// 参数:
//   - options: 可变长度的配置选项
//
// 返回值:
//   - *Setagg: 新创建的实例
func New(options ...Option) *Setagg {
	s := &Setagg{}

	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		s.registry = types.NewRegistry()
	}
	if s.store == nil {
		s.store = catalog.NewMemStore()
	}
	if s.deps == nil {
		s.deps = catalog.NewMemGraph()
	}
	s.catalog = catalog.New(s.registry, s.access)
	s.definer = aggdef.NewDefiner(s.catalog, s.store, s.deps)

	if !s.skipBuiltins {
		s.installBuiltins()
	}
	return s
}

// Define 校验并注册一个聚合定义。
// 这是引擎的核心方法：按固定顺序执行全部校验，解析支撑函数与排序
// 操作符，然后写入占位条目、聚合行和依赖边。任何校验失败都发生在
// 任何目录写入之前。
//
// 参数:
//   - p: 发起定义的会话主体，权限检查以它为准
//   - def: 原始定义请求
//
// 返回值:
//   - *aggdef.Descriptor: 冻结的描述符，含新分配的标识
//   - error: 校验或注册失败时为 *aggdef.DefinitionError
func (s *Setagg) Define(p catalog.Principal, def *aggdef.Definition) (*aggdef.Descriptor, error) {
	desc, err := s.definer.Define(p, def)
	if err != nil {
		return nil, err
	}
	logger.Info("defined aggregate %s.%s id=%d by %s", desc.Namespace, desc.Name, desc.ID, p.Name)
	return desc, nil
}

// Validate 只执行校验与解析，不写任何目录状态。
// 适合在真正注册之前预检一个定义请求。
func (s *Setagg) Validate(p catalog.Principal, def *aggdef.Definition) (*aggdef.Descriptor, error) {
	return s.definer.Validate(p, def)
}

// Load 按标识读回已注册聚合的描述符。
func (s *Setagg) Load(id catalog.OID) (*aggdef.Descriptor, error) {
	return s.definer.Load(id)
}

// Lookup 按命名空间、名称（不区分大小写）与参数类型读回描述符。
func (s *Setagg) Lookup(namespace, name string, argTypes []types.ID) (*aggdef.Descriptor, error) {
	return s.definer.Lookup(namespace, name, argTypes)
}

// Aggregates 返回一个命名空间（空串表示全部）里已注册聚合的描述符，
// 按注册顺序排列。
func (s *Setagg) Aggregates(namespace string) ([]*aggdef.Descriptor, error) {
	rows, err := s.store.List(namespace)
	if err != nil {
		return nil, err
	}
	out := make([]*aggdef.Descriptor, 0, len(rows))
	for _, row := range rows {
		desc, err := s.definer.Load(row.AggID)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// NewAccumulator 为一个普通聚合创建逐行累加器。
func (s *Setagg) NewAccumulator(desc *aggdef.Descriptor) (*aggdef.Accumulator, error) {
	return aggdef.NewAccumulator(s.registry, desc)
}

// NewSortContext 为一个分组创建排序上下文。
// 形状描述分组行的列布局，keys 描述 WITHIN GROUP (ORDER BY ...) 的排序。
func (s *Setagg) NewSortContext(shape *dataset.Shape, keys []tuplesort.SortKey) (*tuplesort.Context, error) {
	return tuplesort.New(s.registry, shape, keys)
}

// Rank 计算假想行在分组中的 rank。
// args 是假想行的各列取值，argTypes 是对应的类型，必须与排序上下文
// 的排序列逐位一致。
func (s *Setagg) Rank(sc *tuplesort.Context, argTypes []types.ID, args []dataset.Datum) (int64, error) {
	return hypothetical.Rank(sc, argTypes, args)
}

// DenseRank 计算假想行的 dense_rank（相等排序键的行算同一名次）。
func (s *Setagg) DenseRank(sc *tuplesort.Context, argTypes []types.ID, args []dataset.Datum) (int64, error) {
	return hypothetical.DenseRank(sc, argTypes, args)
}

// PercentRank 计算假想行的 percent_rank，分组为空时为 0。
func (s *Setagg) PercentRank(sc *tuplesort.Context, argTypes []types.ID, args []dataset.Datum) (float64, error) {
	return hypothetical.PercentRank(sc, argTypes, args)
}

// CumeDist 计算假想行的 cume_dist。
func (s *Setagg) CumeDist(sc *tuplesort.Context, argTypes []types.ID, args []dataset.Datum) (float64, error) {
	return hypothetical.CumeDist(sc, argTypes, args)
}

// Registry 返回类型注册表。
func (s *Setagg) Registry() *types.Registry {
	return s.registry
}

// Catalog 返回函数/操作符目录。
func (s *Setagg) Catalog() *catalog.Catalog {
	return s.catalog
}

// Store 返回聚合行存储。
func (s *Setagg) Store() catalog.Store {
	return s.store
}

// Dependencies 返回依赖图。
func (s *Setagg) Dependencies() catalog.DependencyRecorder {
	return s.deps
}
