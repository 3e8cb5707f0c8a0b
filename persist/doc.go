// Package persist stores graph documents as JSON files.
//
// Document is the wire form of a graph: a flat list of node specs and a
// flat list of edges. FromSnapshot produces a deterministic document from
// a graph snapshot, and Unmarshal validates incoming documents before they
// reach the graph layer.
//
// FileStore reads and writes a single document at a fixed path. Saves are
// atomic (temp file plus rename), so a crash mid-write never leaves a
// half-written document behind.
package persist
