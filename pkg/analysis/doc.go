// Package analysis classifies the nodes of a flow graph.
//
// Expand walks the graph depth-first from a root. It carries an immutable
// path set, so sibling branches never share cycle state. A node revisited on
// the current path becomes a loop-marked leaf. A target missing from the graph
// becomes a missing-marked leaf. Neither case is an error.
//
// Orphans uses a global test: a node is an orphan when it is not the root and
// no edge anywhere in the graph targets it.
package analysis
