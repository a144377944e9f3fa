package graph

import "errors"

var (
	// ErrCorruptSnapshot indicates a snapshot payload that cannot be decoded
	ErrCorruptSnapshot = errors.New("corrupt graph snapshot")

	// ErrSnapshotVersion indicates a snapshot from an incompatible encoder
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)
