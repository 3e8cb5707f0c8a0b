package persist

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/graph"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/validation"
)

// NodeSpec is the wire form of a single node.
type NodeSpec struct {
	ID         string     `json:"id" validate:"required"`
	Type       string     `json:"type" validate:"required"`
	Parameters []op.Param `json:"parameters"`
}

// EdgeSpec is the wire form of a directed edge.
type EdgeSpec struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Document is the wire form of a full graph.
type Document struct {
	Nodes []NodeSpec `json:"nodes" validate:"dive"`
	Edges []EdgeSpec `json:"edges" validate:"dive"`
}

// FromSnapshot converts a snapshot to its wire form. The output is
// deterministic: nodes sorted by id, edges sorted by source then target.
func FromSnapshot(snap *graph.Snapshot) Document {
	doc := Document{
		Nodes: make([]NodeSpec, 0, snap.Len()),
		Edges: make([]EdgeSpec, 0, snap.EdgeCount()),
	}
	for _, n := range snap.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeSpec{
			ID:         n.ID,
			Type:       string(n.Kind),
			Parameters: op.ExternalParams(n.Params),
		})
		for _, succ := range snap.Successors(n.ID) {
			doc.Edges = append(doc.Edges, EdgeSpec{Source: n.ID, Target: succ})
		}
	}
	return doc
}

// Marshal encodes the document as indented JSON.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persist: encode document: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, apperrors.Validation(fmt.Sprintf("malformed document: %v", err))
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the document's shape. Graph-level rules (unknown kinds,
// duplicate ids, cycles) are enforced when the document is replayed into a
// store, not here.
func (d Document) Validate() error {
	return validation.Validate(d)
}
