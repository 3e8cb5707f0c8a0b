package plan

import (
	"fmt"
	"sort"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/graph"
)

// Source is the read-only view of a graph the resolver works from.
// *graph.Snapshot satisfies it.
type Source interface {
	Len() int
	Nodes() []graph.Node
	Successors(id string) []string
}

// Plan is an execution order. Every node's dependencies live in strictly
// earlier stages, so the members of one stage are mutually independent.
// Ids within a stage are sorted.
type Plan struct {
	stages     [][]string
	nodes      map[string]graph.Node
	stageIndex map[string]int
}

// Resolve orders the nodes of src into stages. A graph kept acyclic by the
// store always resolves; a source that cannot be fully ordered yields
// GRAPH_INCONSISTENT.
func Resolve(src Source) (*Plan, error) {
	total := src.Len()
	p := &Plan{
		nodes:      make(map[string]graph.Node, total),
		stageIndex: make(map[string]int, total),
	}
	if total == 0 {
		return p, nil
	}

	inDeg := make(map[string]int, total)
	for _, n := range src.Nodes() {
		p.nodes[n.ID] = n
		if _, ok := inDeg[n.ID]; !ok {
			inDeg[n.ID] = 0
		}
	}
	for id := range p.nodes {
		for _, succ := range src.Successors(id) {
			if _, ok := p.nodes[succ]; !ok {
				return nil, apperrors.Inconsistent(fmt.Sprintf("edge %s -> %s references an unknown node", id, succ))
			}
			inDeg[succ]++
		}
	}

	frontier := make([]string, 0, total)
	for id, d := range inDeg {
		if d == 0 {
			frontier = append(frontier, id)
		}
	}
	sort.Strings(frontier)

	placed := 0
	for len(frontier) > 0 {
		stage := frontier
		p.stages = append(p.stages, stage)
		for _, id := range stage {
			p.stageIndex[id] = len(p.stages) - 1
		}
		placed += len(stage)

		var next []string
		for _, id := range stage {
			for _, succ := range src.Successors(id) {
				inDeg[succ]--
				if inDeg[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}

	if placed != total {
		return nil, apperrors.Inconsistent(fmt.Sprintf("resolution stalled after placing %d of %d nodes", placed, total))
	}
	return p, nil
}

// NumStages returns the number of stages.
func (p *Plan) NumStages() int {
	return len(p.stages)
}

// NodeCount returns the number of planned nodes.
func (p *Plan) NodeCount() int {
	return len(p.nodes)
}

// Stage returns the node ids of stage i in ascending order.
func (p *Plan) Stage(i int) []string {
	out := make([]string, len(p.stages[i]))
	copy(out, p.stages[i])
	return out
}

// Stages returns copies of all stages in execution order.
func (p *Plan) Stages() [][]string {
	out := make([][]string, len(p.stages))
	for i := range p.stages {
		out[i] = p.Stage(i)
	}
	return out
}

// Node returns a copy of the planned node with the given id.
func (p *Plan) Node(id string) (graph.Node, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return graph.Node{}, false
	}
	return n.Clone(), true
}

// StageIndex returns the stage a node was placed in.
func (p *Plan) StageIndex(id string) (int, bool) {
	i, ok := p.stageIndex[id]
	return i, ok
}
