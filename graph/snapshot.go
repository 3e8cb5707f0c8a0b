package graph

import "sort"

// Snapshot is a deep, read-only copy of the graph at one instant. Mutations
// applied to the Store afterwards do not show through.
type Snapshot struct {
	nodes map[string]Node
	succ  map[string][]string
	inDeg map[string]int
	edges int
}

// Snapshot captures the current graph.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		nodes: make(map[string]Node, len(s.nodes)),
		succ:  make(map[string][]string, len(s.succ)),
		inDeg: make(map[string]int, len(s.pred)),
		edges: s.edges,
	}
	for id, n := range s.nodes {
		snap.nodes[id] = n.Clone()
		snap.succ[id] = sortedKeys(s.succ[id])
		snap.inDeg[id] = len(s.pred[id])
	}
	return snap
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges.
func (s *Snapshot) EdgeCount() int {
	return s.edges
}

// Node returns a copy of the node stored under id.
func (s *Snapshot) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes sorted by id.
func (s *Snapshot) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Successors returns the sorted ids depending on id.
func (s *Snapshot) Successors(id string) []string {
	return s.succ[id]
}

// InDegree returns the number of dependencies of id.
func (s *Snapshot) InDegree(id string) int {
	return s.inDeg[id]
}
