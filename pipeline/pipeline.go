package pipeline

import (
	"context"
	"sync"

	"github.com/kbukum/dagkit/executor"
	"github.com/kbukum/dagkit/graph"
	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/persist"
	"github.com/kbukum/dagkit/plan"
)

// Pipeline is a session handle over one graph and one data frame.
type Pipeline struct {
	mu       sync.Mutex
	store    *graph.Store
	reg      *op.Registry
	exec     *executor.Executor
	frame    *op.Frame
	log      *logger.Logger
	autosave *persist.FileStore
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	execCfg  executor.Config
	log      *logger.Logger
	frame    *op.Frame
	autosave *persist.FileStore
	metrics  *observability.Metrics
}

// WithExecutorConfig sets the executor configuration for runs.
func WithExecutorConfig(cfg executor.Config) Option {
	return func(o *options) { o.execCfg = cfg }
}

// WithLogger sets the logger used by the pipeline and its executor.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithFrame seeds the pipeline with an existing frame instead of an empty
// one.
func WithFrame(frame *op.Frame) Option {
	return func(o *options) { o.frame = frame }
}

// WithAutosave persists the graph to store after every successful mutation
// and load. Saves are best effort: a failed save is logged, the mutation
// still stands.
func WithAutosave(store *persist.FileStore) Option {
	return func(o *options) { o.autosave = store }
}

// WithMetrics wires run and node metrics into the executor.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a pipeline around the given registry. The executor
// configuration is validated up front.
func New(reg *op.Registry, opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewDefault("pipeline")
	}
	if o.frame == nil {
		o.frame = op.NewFrame()
	}

	execOpts := []executor.Option{executor.WithLogger(o.log)}
	if o.metrics != nil {
		execOpts = append(execOpts, executor.WithMetrics(o.metrics))
	}
	exec, err := executor.New(o.execCfg, execOpts...)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		store:    graph.NewStore(reg),
		reg:      reg,
		exec:     exec,
		frame:    o.frame,
		log:      o.log,
		autosave: o.autosave,
	}, nil
}

// Registry returns the operation registry the pipeline validates against.
func (p *Pipeline) Registry() *op.Registry {
	return p.reg
}

// AddNode adds a node to the graph.
func (p *Pipeline) AddNode(id string, kind op.Kind, entries []op.Param) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.AddNode(id, kind, entries); err != nil {
		return err
	}
	p.saveLocked()
	return nil
}

// RemoveNode removes a node and its incident edges. Removing an absent node
// is a no-op.
func (p *Pipeline) RemoveNode(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.RemoveNode(id); err != nil {
		return err
	}
	p.saveLocked()
	return nil
}

// AddEdge adds a directed edge between existing nodes.
func (p *Pipeline) AddEdge(source, target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.AddEdge(source, target); err != nil {
		return err
	}
	p.saveLocked()
	return nil
}

// RemoveEdge removes an edge. Removing an absent edge is a no-op.
func (p *Pipeline) RemoveEdge(source, target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.RemoveEdge(source, target); err != nil {
		return err
	}
	p.saveLocked()
	return nil
}

// Execute resolves the current graph into stages and runs it against the
// pipeline's frame. The run works on a snapshot: concurrent mutations apply
// to later runs only.
func (p *Pipeline) Execute(ctx context.Context) (*executor.Result, error) {
	p.mu.Lock()
	snap := p.store.Snapshot()
	p.mu.Unlock()

	pl, err := plan.Resolve(snap)
	if err != nil {
		return nil, err
	}
	return p.exec.Run(ctx, pl, p.reg, p.frame)
}

// Export returns the current graph as a document.
func (p *Pipeline) Export() persist.Document {
	p.mu.Lock()
	snap := p.store.Snapshot()
	p.mu.Unlock()
	return persist.FromSnapshot(snap)
}

// Load replaces the graph with the document's contents. The document is
// replayed against a fresh store with full validation; on any error the
// current graph is left untouched.
func (p *Pipeline) Load(doc persist.Document) error {
	fresh := graph.NewStore(p.reg)
	for _, n := range doc.Nodes {
		if err := fresh.AddNode(n.ID, op.Kind(n.Type), n.Parameters); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges {
		if err := fresh.AddEdge(e.Source, e.Target); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = fresh
	p.saveLocked()

	p.log.Info("graph loaded", logger.Fields(
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
	))
	return nil
}

// NodeCount returns the number of nodes in the graph.
func (p *Pipeline) NodeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.NodeCount()
}

// EdgeCount returns the number of edges in the graph.
func (p *Pipeline) EdgeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.EdgeCount()
}

// SetSeries stores a named series in the frame.
func (p *Pipeline) SetSeries(name string, values []float64) {
	p.frame.Set(name, values)
}

// Series returns a copy of the named series.
func (p *Pipeline) Series(name string) ([]float64, bool) {
	return p.frame.Get(name)
}

// SeriesNames returns the frame's column names, sorted.
func (p *Pipeline) SeriesNames() []string {
	return p.frame.Names()
}

// SeriesSizes returns each column name mapped to its length.
func (p *Pipeline) SeriesSizes() map[string]int {
	return p.frame.Sizes()
}

// saveLocked writes the graph to the autosave store, if one is attached.
// Callers must hold p.mu.
func (p *Pipeline) saveLocked() {
	if p.autosave == nil {
		return
	}
	doc := persist.FromSnapshot(p.store.Snapshot())
	if err := p.autosave.Save(doc); err != nil {
		p.log.Error("autosave failed", logger.MergeWithError(
			logger.Fields("path", p.autosave.Path()), err,
		))
	}
}
