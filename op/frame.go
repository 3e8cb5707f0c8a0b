package op

import (
	"fmt"
	"sort"
	"sync"
)

// Frame is a thread-safe column store. Operations read their input series
// from it and the executor writes each node's output under the node id.
type Frame struct {
	mu   sync.RWMutex
	cols map[string][]float64
}

// NewFrame creates a new empty Frame.
func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]float64)}
}

// Set stores a copy of series under name, replacing any previous column.
func (f *Frame) Set(name string, series []float64) {
	cp := make([]float64, len(series))
	copy(cp, series)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cols[name] = cp
}

// Get retrieves a copy of the column stored under name.
// Returns false if the column does not exist.
func (f *Frame) Get(name string) ([]float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.cols[name]
	if !ok {
		return nil, false
	}
	cp := make([]float64, len(s))
	copy(cp, s)
	return cp, true
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.cols[name]
	return ok
}

// Columns retrieves several columns at once and checks they share one
// length. The result is ordered like names.
func (f *Frame) Columns(names []string) ([][]float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([][]float64, len(names))
	length := -1
	for i, name := range names {
		s, ok := f.cols[name]
		if !ok {
			return nil, fmt.Errorf("frame: column %q not found", name)
		}
		if length == -1 {
			length = len(s)
		} else if len(s) != length {
			return nil, fmt.Errorf("frame: column %q has length %d, expected %d", name, len(s), length)
		}
		cp := make([]float64, len(s))
		copy(cp, s)
		out[i] = cp
	}
	return out, nil
}

// Names returns the sorted column names.
func (f *Frame) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.cols))
	for name := range f.cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes returns the length of every column keyed by name.
func (f *Frame) Sizes() map[string]int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	sizes := make(map[string]int, len(f.cols))
	for name, s := range f.cols {
		sizes[name] = len(s)
	}
	return sizes
}
