package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
)

// snapshotVersion is bumped whenever the encoding below changes shape
const snapshotVersion = 1

// EncodeSnapshot serialises the graph for replication to workers. Vertex IDs
// and per-vertex adjacency runs are both ascending, so they delta-encode
// well: each sequence is stored as varint deltas and the whole payload is
// snappy-compressed.
func EncodeSnapshot(g *Graph) []byte {
	n := g.NumVertices()
	m := g.NumEdges()

	buf := make([]byte, 0, 16+n*2+m*2)
	buf = binary.AppendUvarint(buf, snapshotVersion)
	buf = binary.AppendUvarint(buf, uint64(n))
	buf = binary.AppendUvarint(buf, uint64(m))

	prev := uint64(0)
	for _, id := range g.ids {
		buf = binary.AppendUvarint(buf, id-prev)
		prev = id
	}

	for v := 0; v < n; v++ {
		run := g.OutNeighbors(uint32(v))
		buf = binary.AppendUvarint(buf, uint64(len(run)))
		prevT := uint64(0)
		for _, t := range run {
			buf = binary.AppendUvarint(buf, uint64(t)-prevT)
			prevT = uint64(t)
		}
	}

	return snappy.Encode(nil, buf)
}

// DecodeSnapshot rebuilds a graph from an EncodeSnapshot payload.
func DecodeSnapshot(data []byte) (*Graph, error) {
	buf, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	r := &uvarintReader{buf: buf}

	version := r.next()
	if r.err != nil {
		return nil, ErrCorruptSnapshot
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: got version %d", ErrSnapshotVersion, version)
	}

	n := int(r.next())
	m := int(r.next())
	if r.err != nil {
		return nil, ErrCorruptSnapshot
	}

	ids := make([]uint64, n)
	index := make(map[uint64]uint32, n)
	prev := uint64(0)
	for i := 0; i < n; i++ {
		prev += r.next()
		ids[i] = prev
		index[prev] = uint32(i)
	}

	offsets := make([]uint64, n+1)
	targets := make([]uint32, 0, m)
	for v := 0; v < n; v++ {
		// Cap each run against the header's edge count so a corrupt degree
		// varint cannot drive an unbounded append
		d := r.next()
		if d > uint64(m-len(targets)) {
			return nil, fmt.Errorf("%w: vertex %d degree %d exceeds remaining edges", ErrCorruptSnapshot, v, d)
		}
		degree := int(d)
		prevT := uint64(0)
		for i := 0; i < degree; i++ {
			prevT += r.next()
			targets = append(targets, uint32(prevT))
		}
		offsets[v+1] = offsets[v] + uint64(degree)
	}
	if r.err != nil {
		return nil, ErrCorruptSnapshot
	}
	if len(targets) != m {
		return nil, fmt.Errorf("%w: edge count mismatch, header %d decoded %d", ErrCorruptSnapshot, m, len(targets))
	}

	return &Graph{
		ids:     ids,
		index:   index,
		offsets: offsets,
		targets: targets,
	}, nil
}

// uvarintReader consumes varints from a buffer, latching the first error so
// callers can check once at the end of a decode section.
type uvarintReader struct {
	buf []byte
	pos int
	err error
}

func (r *uvarintReader) next() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		r.err = ErrCorruptSnapshot
		return 0
	}
	r.pos += n
	return v
}
