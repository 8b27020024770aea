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
	"io"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/logger"
	"github.com/rulego/setagg/types"
)

// Option 定义Setagg的配置选项类型
type Option func(*Setagg)

// WithLogLevel 设置日志级别
func WithLogLevel(level logger.Level) Option {
	return func(s *Setagg) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput 把日志重定向到指定输出，级别不变
func WithLogOutput(w io.Writer) Option {
	return func(s *Setagg) {
		logger.SetDefault(logger.NewLogger(logger.INFO, w))
	}
}

// WithLogger 替换整个日志后端
func WithLogger(l logger.Logger) Option {
	return func(s *Setagg) {
		logger.SetDefault(l)
	}
}

// WithDiscardLog 禁用日志输出
func WithDiscardLog() Option {
	return func(s *Setagg) {
		logger.SetDefault(logger.NewDiscardLogger())
	}
}

// WithRegistry 使用外部类型注册表
// 适用于调用方已经注册了自定义类型（如枚举）的场景
func WithRegistry(reg *types.Registry) Option {
	return func(s *Setagg) {
		s.registry = reg
	}
}

// WithStore 使用外部聚合行存储
// 传入 pgxstore.Store 可把聚合目录持久化到 PostgreSQL
func WithStore(store catalog.Store) Option {
	return func(s *Setagg) {
		s.store = store
	}
}

// WithDependencyRecorder 使用外部依赖图
func WithDependencyRecorder(deps catalog.DependencyRecorder) Option {
	return func(s *Setagg) {
		s.deps = deps
	}
}

// WithAccessController 设置权限控制器
// 不设置时所有主体都可创建与调用
func WithAccessController(ac catalog.AccessController) Option {
	return func(s *Setagg) {
		s.access = ac
	}
}

// WithoutBuiltins 跳过内建目录装载
// 适用于测试或完全自定义目录的场景；rank 等内建聚合将不可用
func WithoutBuiltins() Option {
	return func(s *Setagg) {
		s.skipBuiltins = true
	}
}
