package graph

import (
	"sort"
)

// Edge is a single directed edge between two external vertex identifiers,
// exactly as read from the edge list. No weights, no properties.
type Edge struct {
	Src uint64
	Dst uint64
}

// Graph is an immutable directed graph in CSR (compressed sparse row) form.
// Vertices are densely renumbered 0..n-1 in ascending order of their external
// identifiers; the external IDs are retained for result reporting. Once built
// the graph is never mutated, so it is safe for concurrent reads.
type Graph struct {
	ids     []uint64          // internal index -> external vertex ID, ascending
	index   map[uint64]uint32 // external vertex ID -> internal index
	offsets []uint64          // len n+1, offsets[v]..offsets[v+1] bounds v's targets
	targets []uint32          // internal indices of out-neighbours, sorted per vertex
}

// Build constructs a graph from an edge list. Edges are taken as given: no
// deduplication or validation, parallel edges simply contribute multiple
// adjacency entries.
func Build(edges []Edge) *Graph {
	seen := make(map[uint64]struct{}, len(edges))
	for _, e := range edges {
		seen[e.Src] = struct{}{}
		seen[e.Dst] = struct{}{}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[uint64]uint32, len(ids))
	for i, id := range ids {
		index[id] = uint32(i)
	}

	n := len(ids)
	degrees := make([]uint64, n)
	for _, e := range edges {
		degrees[index[e.Src]]++
	}

	offsets := make([]uint64, n+1)
	for v := 0; v < n; v++ {
		offsets[v+1] = offsets[v] + degrees[v]
	}

	targets := make([]uint32, len(edges))
	cursor := make([]uint64, n)
	copy(cursor, offsets[:n])
	for _, e := range edges {
		src := index[e.Src]
		targets[cursor[src]] = index[e.Dst]
		cursor[src]++
	}

	// Sort each adjacency run so the layout is independent of input order
	for v := 0; v < n; v++ {
		run := targets[offsets[v]:offsets[v+1]]
		sort.Slice(run, func(i, j int) bool { return run[i] < run[j] })
	}

	return &Graph{
		ids:     ids,
		index:   index,
		offsets: offsets,
		targets: targets,
	}
}

// NumVertices returns the number of distinct vertices
func (g *Graph) NumVertices() int {
	return len(g.ids)
}

// NumEdges returns the number of directed edges, counting parallels
func (g *Graph) NumEdges() int {
	return len(g.targets)
}

// OutNeighbors returns the internal indices reachable from v by one directed
// edge. The returned slice aliases internal storage and must not be modified.
func (g *Graph) OutNeighbors(v uint32) []uint32 {
	return g.targets[g.offsets[v]:g.offsets[v+1]]
}

// OutDegree returns the out-degree of v
func (g *Graph) OutDegree(v uint32) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// VertexID maps an internal index back to its external identifier
func (g *Graph) VertexID(v uint32) uint64 {
	return g.ids[v]
}

// Lookup maps an external identifier to its internal index
func (g *Graph) Lookup(id uint64) (uint32, bool) {
	v, ok := g.index[id]
	return v, ok
}

// VertexIDs returns all external identifiers in ascending order. The returned
// slice aliases internal storage and must not be modified.
func (g *Graph) VertexIDs() []uint64 {
	return g.ids
}
