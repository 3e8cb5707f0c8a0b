package graph

import (
	"sort"
	"sync"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/op"
)

// Store is the mutable operation graph. Every mutation is atomic: it either
// applies completely or leaves the graph exactly as it was, and the edge set
// is acyclic after every call, not just at read time.
type Store struct {
	mu       sync.RWMutex
	registry *op.Registry
	nodes    map[string]Node
	succ     map[string]map[string]struct{}
	pred     map[string]map[string]struct{}
	edges    int
}

// NewStore creates an empty Store validating node kinds and parameters
// against reg.
func NewStore(reg *op.Registry) *Store {
	return &Store{
		registry: reg,
		nodes:    make(map[string]Node),
		succ:     make(map[string]map[string]struct{}),
		pred:     make(map[string]map[string]struct{}),
	}
}

// Registry returns the registry this store validates against.
func (s *Store) Registry() *op.Registry {
	return s.registry
}

// AddNode validates and inserts a new node. The kind must be registered, the
// id unused, and the parameters must satisfy the kind's required list.
func (s *Store) AddNode(id string, kind op.Kind, entries []op.Param) error {
	if _, err := s.registry.Lookup(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; exists {
		return apperrors.DuplicateNode(id)
	}
	params, err := op.ConvertParams(entries)
	if err != nil {
		return err
	}
	if err := s.registry.Validate(kind, params); err != nil {
		return err
	}

	s.nodes[id] = Node{ID: id, Kind: kind, Params: params}
	s.succ[id] = make(map[string]struct{})
	s.pred[id] = make(map[string]struct{})
	return nil
}

// RemoveNode deletes a node and every edge touching it. Removing an unknown
// id is a no-op.
func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; !exists {
		return nil
	}

	for target := range s.succ[id] {
		delete(s.pred[target], id)
		s.edges--
	}
	for source := range s.pred[id] {
		delete(s.succ[source], id)
		s.edges--
	}
	delete(s.succ, id)
	delete(s.pred, id)
	delete(s.nodes, id)
	return nil
}

// AddEdge inserts a dependency from source to target. The edge is checked
// for cycle safety before anything is written: if target already reaches
// source the insert is rejected and the graph stays untouched. Re-adding an
// existing edge is a no-op.
func (s *Store) AddEdge(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[source]; !exists {
		return apperrors.NodeNotFound(source)
	}
	if _, exists := s.nodes[target]; !exists {
		return apperrors.NodeNotFound(target)
	}
	if source == target {
		return apperrors.Cycle(source, target)
	}
	if _, exists := s.succ[source][target]; exists {
		return nil
	}
	if s.reaches(target, source) {
		return apperrors.Cycle(source, target)
	}

	s.succ[source][target] = struct{}{}
	s.pred[target][source] = struct{}{}
	s.edges++
	return nil
}

// RemoveEdge deletes a dependency. Removing an edge that does not exist is
// a no-op.
func (s *Store) RemoveEdge(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.succ[source][target]; !exists {
		return nil
	}
	delete(s.succ[source], target)
	delete(s.pred[target], source)
	s.edges--
	return nil
}

// reaches walks forward from start and reports whether goal is reachable.
// Only descendants of start are visited, so the check stays local to the
// part of the graph the new edge could affect. Callers hold the lock.
func (s *Store) reaches(start, goal string) bool {
	stack := []string{start}
	visited := map[string]struct{}{start: {}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == goal {
			return true
		}
		for next := range s.succ[cur] {
			if _, seen := visited[next]; !seen {
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}
	return false
}

// --- Queries ---

// HasNode reports whether id exists.
func (s *Store) HasNode(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// Node returns a copy of the node stored under id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges
}

// InDegree returns the number of dependencies of id.
func (s *Store) InDegree(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pred[id])
}

// OutDegree returns the number of dependents of id.
func (s *Store) OutDegree(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.succ[id])
}

// Successors returns the sorted ids depending on id.
func (s *Store) Successors(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.succ[id])
}

// Predecessors returns the sorted ids id depends on.
func (s *Store) Predecessors(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.pred[id])
}

// Nodes returns copies of all nodes sorted by id.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges sorted by source then target.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Edge, 0, s.edges)
	for source, targets := range s.succ {
		for target := range targets {
			out = append(out, Edge{Source: source, Target: target})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
