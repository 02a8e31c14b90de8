package graph

import "errors"

// Sentinel errors for graph traversal
var (
	// ErrCycleDetected is returned by IOToposort when the data edges and
	// extra orderings together form a cycle.
	ErrCycleDetected = errors.New("cycle detected in graph")
)
