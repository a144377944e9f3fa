package cluster

import "errors"

var (
	// ErrInvalidWorkerCount indicates a non-positive worker count
	ErrInvalidWorkerCount = errors.New("worker count must be positive")

	// ErrClusterClosed indicates use of the cluster after Close
	ErrClusterClosed = errors.New("cluster is closed")

	// ErrNotReplicated indicates a computation was requested before the graph
	// was replicated to the workers
	ErrNotReplicated = errors.New("graph has not been replicated")
)
