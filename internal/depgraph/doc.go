// Package depgraph provides a small directed acyclic graph used to express
// the prerequisite relationships between actions inside a pipeline stage.
// Run-order waves are not stored; they are derived from the graph by
// topological layering, so the dependency relationship stays the single
// source of truth.
package depgraph
