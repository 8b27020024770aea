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

// Package pgxstore 把聚合目录行持久化到 PostgreSQL。
// Package pgxstore persists aggregate catalog rows in a PostgreSQL table,
// implementing catalog.Store on top of pgx. Uniqueness violations map to
// catalog.ErrDuplicate and missing rows to catalog.ErrNotFound, so callers
// cannot tell it apart from the in-memory store.
package pgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rulego/setagg/catalog"
	"github.com/rulego/setagg/logger"
	"github.com/rulego/setagg/types"
)

// codeUniqueViolation PostgreSQL 唯一约束冲突的 SQLSTATE
const codeUniqueViolation = "23505"

// DB 执行查询所需的最小接口，*pgx.Conn、pgx.Tx 和 *pgxpool.Pool 都满足。
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store PostgreSQL 支撑的聚合行存储。
type Store struct {
	db      DB
	table   string
	timeout time.Duration
}

var _ catalog.Store = (*Store)(nil)

// Option 配置 Store
type Option func(*Store)

// WithTable 更换表名，默认 setagg_aggregates。
func WithTable(name string) Option {
	return func(s *Store) {
		s.table = name
	}
}

// WithTimeout 给每个数据库操作加超时，零值表示不限时。
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// New creates a store over an open pgx connection, pool or transaction.
func New(db DB, opts ...Option) *Store {
	s := &Store{db: db, table: "setagg_aggregates"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) opCtx() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

// EnsureSchema creates the aggregate table and its signature index when they
// do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		agg_id        BIGINT PRIMARY KEY,
		name          TEXT NOT NULL,
		namespace     TEXT NOT NULL,
		arg_types     BIGINT[] NOT NULL,
		arg_modes     TEXT NOT NULL DEFAULT '',
		arg_names     TEXT[],
		result_type   BIGINT NOT NULL,
		trans_fn      BIGINT NOT NULL DEFAULT 0,
		final_fn      BIGINT NOT NULL DEFAULT 0,
		sort_op       BIGINT NOT NULL DEFAULT 0,
		trans_sort_op BIGINT NOT NULL DEFAULT 0,
		trans_type    BIGINT NOT NULL DEFAULT 0,
		ordered_set   BOOLEAN NOT NULL DEFAULT FALSE,
		direct_args   INTEGER NOT NULL DEFAULT -1,
		init_value    TEXT,
		strict        BOOLEAN NOT NULL DEFAULT FALSE
	)`, s.table)
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgxstore: create table: %w", err)
	}
	idx := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_signature_idx
		ON %s (namespace, lower(name), arg_types)`, s.table, s.table)
	if _, err := s.db.Exec(ctx, idx); err != nil {
		return fmt.Errorf("pgxstore: create signature index: %w", err)
	}
	logger.Debug("pgxstore: schema ready for table %s", s.table)
	return nil
}

const rowColumns = `agg_id, name, namespace, arg_types, arg_modes, arg_names,
	result_type, trans_fn, final_fn, sort_op, trans_sort_op, trans_type,
	ordered_set, direct_args, init_value, strict`

// Insert 写入一行。签名唯一索引冲突映射为 catalog.ErrDuplicate。
func (s *Store) Insert(row *catalog.AggregateRow) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	sql := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		s.table, rowColumns)
	_, err := s.db.Exec(ctx, sql,
		int64(row.AggID), row.Name, row.Namespace, idsToInt64(row.ArgTypes),
		row.ArgModes, textArray(row.ArgNames),
		int64(row.ResultType), int64(row.TransFn), int64(row.FinalFn),
		int64(row.SortOp), int64(row.TransSortOp), int64(row.TransType),
		row.OrderedSet, row.DirectArgs, row.InitValue, row.Strict)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return fmt.Errorf("aggregate %s already exists: %w", row.Name, catalog.ErrDuplicate)
		}
		return fmt.Errorf("pgxstore: insert aggregate %s: %w", row.Name, err)
	}
	return nil
}

// Get 按标识读取一行。
func (s *Store) Get(id catalog.OID) (*catalog.AggregateRow, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE agg_id = $1`, rowColumns, s.table)
	row, err := scanRow(s.db.QueryRow(ctx, sql, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("aggregate %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pgxstore: get aggregate %d: %w", id, err)
	}
	return row, nil
}

// Lookup 按命名空间、名称（不区分大小写）和参数类型定位一行。
func (s *Store) Lookup(namespace, name string, argTypes []types.ID) (*catalog.AggregateRow, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	sql := fmt.Sprintf(`SELECT %s FROM %s
		WHERE namespace = $1 AND lower(name) = lower($2) AND arg_types = $3`,
		rowColumns, s.table)
	row, err := scanRow(s.db.QueryRow(ctx, sql, namespace, name, idsToInt64(argTypes)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("aggregate %s: %w", name, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pgxstore: lookup aggregate %s: %w", name, err)
	}
	return row, nil
}

// Delete 删除一行，行不存在时返回 catalog.ErrNotFound。
func (s *Store) Delete(id catalog.OID) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	tag, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE agg_id = $1`, s.table), int64(id))
	if err != nil {
		return fmt.Errorf("pgxstore: delete aggregate %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("aggregate %d: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// List 返回一个命名空间（空串表示全部）的行，按 agg_id 排序。
func (s *Store) List(namespace string) ([]*catalog.AggregateRow, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	sql := fmt.Sprintf(`SELECT %s FROM %s
		WHERE $1 = '' OR namespace = $1 ORDER BY agg_id`, rowColumns, s.table)
	rows, err := s.db.Query(ctx, sql, namespace)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: list aggregates: %w", err)
	}
	defer rows.Close()

	var out []*catalog.AggregateRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("pgxstore: list aggregates: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgxstore: list aggregates: %w", err)
	}
	return out, nil
}

// scanRow 从一条查询结果恢复目录行。
func scanRow(r pgx.Row) (*catalog.AggregateRow, error) {
	var (
		row      catalog.AggregateRow
		aggID    int64
		args     []int64
		names    []string
		result   int64
		transFn  int64
		finalFn  int64
		sortOp   int64
		transOp  int64
		transTyp int64
	)
	err := r.Scan(&aggID, &row.Name, &row.Namespace, &args, &row.ArgModes, &names,
		&result, &transFn, &finalFn, &sortOp, &transOp, &transTyp,
		&row.OrderedSet, &row.DirectArgs, &row.InitValue, &row.Strict)
	if err != nil {
		return nil, err
	}
	row.AggID = catalog.OID(aggID)
	row.ArgTypes = int64ToIDs(args)
	row.ArgNames = names
	row.ResultType = types.ID(result)
	row.TransFn = catalog.OID(transFn)
	row.FinalFn = catalog.OID(finalFn)
	row.SortOp = catalog.OID(sortOp)
	row.TransSortOp = catalog.OID(transOp)
	row.TransType = types.ID(transTyp)
	return &row, nil
}

func idsToInt64(ids []types.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func int64ToIDs(vals []int64) []types.ID {
	if vals == nil {
		return nil
	}
	out := make([]types.ID, len(vals))
	for i, v := range vals {
		out[i] = types.ID(v)
	}
	return out
}

// textArray 空切片写成 NULL，避免在表里留下空数组与 nil 的歧义。
func textArray(vals []string) interface{} {
	if len(vals) == 0 {
		return nil
	}
	return vals
}
