package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rulego/setagg/types"
)

// 直接参数个数哨兵值。API 层使用带标签的形状变体，只有持久化行
// 仍然保留历史编码，以便与既有目录模式位兼容。
const (
	// DirectArgsNone 普通聚合（无有序集语义）。
	DirectArgsNone = -1
	// DirectArgsHypothetical 假想集聚合（全部参数为直接参数）。
	DirectArgsHypothetical = -2
)

// AggregateRow 持久化的聚合目录行。字段布局是稳定模式：
// 支撑函数/操作符标识、转移类型、有序集标志、直接参数哨兵与初始值文本。
type AggregateRow struct {
	AggID       OID
	Name        string
	Namespace   string
	ArgTypes    []types.ID
	ArgModes    string // 每参数一个模式字符（'i'/'v'），空串表示全部 'i'
	ArgNames    []string
	ResultType  types.ID
	TransFn     OID
	FinalFn     OID
	SortOp      OID
	TransSortOp OID
	TransType   types.ID
	OrderedSet  bool
	DirectArgs  int32
	InitValue   *string
	Strict      bool
}

// Store 聚合行的持久化能力。唯一性冲突必须以 ErrDuplicate 区分于
// 其他失败，找不到行以 ErrNotFound 区分。
type Store interface {
	Insert(row *AggregateRow) error
	Get(id OID) (*AggregateRow, error)
	Lookup(namespace, name string, argTypes []types.ID) (*AggregateRow, error)
	Delete(id OID) error
	List(namespace string) ([]*AggregateRow, error)
}

// MemStore 进程内 Store 实现。
type MemStore struct {
	mu   sync.RWMutex
	byID map[OID]*AggregateRow
	keys map[string]OID
}

// NewMemStore creates an empty in-memory aggregate store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID: make(map[OID]*AggregateRow),
		keys: make(map[string]OID),
	}
}

func rowKey(namespace, name string, argTypes []types.ID) string {
	parts := make([]string, 0, len(argTypes)+2)
	parts = append(parts, namespace, strings.ToLower(name))
	for _, t := range argTypes {
		parts = append(parts, fmt.Sprint(uint32(t)))
	}
	return strings.Join(parts, "|")
}

// Insert 写入一行。同一命名空间内同名同签名的行冲突。
func (s *MemStore) Insert(row *AggregateRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rowKey(row.Namespace, row.Name, row.ArgTypes)
	if _, exists := s.keys[key]; exists {
		return fmt.Errorf("aggregate %s already exists: %w", row.Name, ErrDuplicate)
	}
	if _, exists := s.byID[row.AggID]; exists {
		return fmt.Errorf("aggregate id %d already exists: %w", row.AggID, ErrDuplicate)
	}
	s.byID[row.AggID] = row
	s.keys[key] = row.AggID
	return nil
}

func (s *MemStore) Get(id OID) (*AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("aggregate %d: %w", id, ErrNotFound)
	}
	return row, nil
}

func (s *MemStore) Lookup(namespace, name string, argTypes []types.ID) (*AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.keys[rowKey(namespace, name, argTypes)]
	if !ok {
		return nil, fmt.Errorf("aggregate %s: %w", name, ErrNotFound)
	}
	return s.byID[id], nil
}

func (s *MemStore) Delete(id OID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("aggregate %d: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	delete(s.keys, rowKey(row.Namespace, row.Name, row.ArgTypes))
	return nil
}

func (s *MemStore) List(namespace string) ([]*AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*AggregateRow
	for _, row := range s.byID {
		if namespace == "" || row.Namespace == namespace {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AggID < out[j].AggID })
	return out, nil
}
