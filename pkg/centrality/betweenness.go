package centrality

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/dd0wney/cluso-centrality/pkg/graph"
)

// ErrInvalidSampleSize is returned when the requested sample size is not positive
var ErrInvalidSampleSize = errors.New("sample size must be positive")

// Score is one vertex's approximate betweenness centrality
type Score struct {
	Vertex uint64  `json:"vertex"`
	Score  float64 `json:"score"`
}

// Result holds one complete centrality computation, tagged with the sampling
// parameters that produced it. Scores are sorted by external vertex ID.
type Result struct {
	Scores     []Score `json:"scores"`
	SampleSize int     `json:"sample_size"`
	Seed       int64   `json:"seed"`
}

// SampleSources deterministically chooses min(k, n) distinct source vertices
// using the given seed. The same (k, seed) always yields the same sample, which
// is what lets a local run and a distributed run be compared at all. The
// returned internal indices are sorted ascending.
func SampleSources(g *graph.Graph, k int, seed int64) ([]uint32, error) {
	if k <= 0 {
		return nil, ErrInvalidSampleSize
	}

	n := g.NumVertices()
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	sources := make([]uint32, k)
	for i := 0; i < k; i++ {
		sources[i] = uint32(perm[i])
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources, nil
}

// ForSources runs one Brandes pass per source and returns the raw accumulated
// dependencies as a dense vector indexed by internal vertex. This is the unit
// of distributed work: partial vectors from disjoint source sets sum to the
// full unnormalised result.
func ForSources(g *graph.Graph, sources []uint32) []float64 {
	n := g.NumVertices()
	acc := make([]float64, n)
	if n == 0 {
		return acc
	}

	sc := newScratch(n)
	for _, s := range sources {
		sc.brandes(g, s, acc)
	}
	return acc
}

// Finalize normalises a raw accumulation vector and assembles the tagged,
// vertex-sorted result. The factor is the directed Brandes normalisation
// 1/((n-1)(n-2)) rescaled by n/k to compensate for sampling only k of the n
// possible sources.
func Finalize(g *graph.Graph, acc []float64, sampleSize int, seed int64) *Result {
	n := g.NumVertices()

	factor := 1.0
	if n > 2 {
		factor = 1.0 / float64((n-1)*(n-2))
		if sampleSize > 0 && sampleSize < n {
			factor *= float64(n) / float64(sampleSize)
		}
	}

	scores := make([]Score, n)
	for v := 0; v < n; v++ {
		scores[v] = Score{
			Vertex: g.VertexID(uint32(v)),
			Score:  acc[v] * factor,
		}
	}

	return &Result{
		Scores:     scores,
		SampleSize: sampleSize,
		Seed:       seed,
	}
}

// scratch holds the per-pass working state so the inner loop allocates nothing
type scratch struct {
	sigma []float64
	dist  []int32
	delta []float64
	stack []uint32
	queue []uint32
	preds [][]uint32
}

func newScratch(n int) *scratch {
	return &scratch{
		sigma: make([]float64, n),
		dist:  make([]int32, n),
		delta: make([]float64, n),
		stack: make([]uint32, 0, n),
		queue: make([]uint32, 0, n),
		preds: make([][]uint32, n),
	}
}

// brandes runs a single-source Brandes pass and adds the dependency of every
// vertex on shortest paths from source into acc.
func (sc *scratch) brandes(g *graph.Graph, source uint32, acc []float64) {
	n := len(sc.sigma)
	for i := 0; i < n; i++ {
		sc.sigma[i] = 0
		sc.dist[i] = -1
		sc.delta[i] = 0
		sc.preds[i] = sc.preds[i][:0]
	}
	sc.stack = sc.stack[:0]
	sc.queue = sc.queue[:0]

	sc.sigma[source] = 1
	sc.dist[source] = 0
	sc.queue = append(sc.queue, source)

	for head := 0; head < len(sc.queue); head++ {
		v := sc.queue[head]
		sc.stack = append(sc.stack, v)

		for _, w := range g.OutNeighbors(v) {
			if sc.dist[w] < 0 {
				sc.dist[w] = sc.dist[v] + 1
				sc.queue = append(sc.queue, w)
			}
			if sc.dist[w] == sc.dist[v]+1 {
				sc.sigma[w] += sc.sigma[v]
				sc.preds[w] = append(sc.preds[w], v)
			}
		}
	}

	// Back-propagation in reverse BFS order
	for i := len(sc.stack) - 1; i >= 0; i-- {
		w := sc.stack[i]
		for _, p := range sc.preds[w] {
			sc.delta[p] += (sc.sigma[p] / sc.sigma[w]) * (1.0 + sc.delta[w])
		}
		if w != source {
			acc[w] += sc.delta[w]
		}
	}
}
