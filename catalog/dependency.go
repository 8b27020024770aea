package catalog

import "sync"

// DependencyRecorder 依赖图记录能力。新建聚合对其引用的函数、
// 操作符和类型登记 "依赖于" 边，供安全删除与级联逻辑使用。
type DependencyRecorder interface {
	Record(from, to ObjectRef) error
	DependenciesOf(from ObjectRef) []ObjectRef
	RemoveAll(from ObjectRef) error
}

// MemGraph 进程内依赖图。
type MemGraph struct {
	mu    sync.RWMutex
	edges map[ObjectRef][]ObjectRef
}

// NewMemGraph creates an empty dependency graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{edges: make(map[ObjectRef][]ObjectRef)}
}

// Record adds a depends-on edge. Duplicate edges collapse to one.
func (g *MemGraph) Record(from, to ObjectRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.edges[from] {
		if existing == to {
			return nil
		}
	}
	g.edges[from] = append(g.edges[from], to)
	return nil
}

// DependenciesOf returns the recorded edges leaving from.
func (g *MemGraph) DependenciesOf(from ObjectRef) []ObjectRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	deps := g.edges[from]
	out := make([]ObjectRef, len(deps))
	copy(out, deps)
	return out
}

// RemoveAll drops every edge leaving from.
func (g *MemGraph) RemoveAll(from ObjectRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges, from)
	return nil
}
