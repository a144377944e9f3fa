package centrality

import (
	"github.com/dd0wney/cluso-centrality/pkg/graph"
	"github.com/dd0wney/cluso-centrality/pkg/parallel"
	"github.com/dd0wney/cluso-centrality/pkg/partition"
)

// Approximate computes sampled betweenness centrality on this process, fanning
// the sampled sources out across a worker pool. Partial vectors are folded in
// rank order so a given worker count always produces the same result.
func Approximate(g *graph.Graph, k int, seed int64, workers int) (*Result, error) {
	sources, err := SampleSources(g, k, seed)
	if err != nil {
		return nil, err
	}

	if workers <= 1 || len(sources) <= 1 {
		return Finalize(g, ForSources(g, sources), len(sources), seed), nil
	}

	if workers > len(sources) {
		workers = len(sources)
	}

	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, err
	}

	chunks := partition.SplitRange(len(sources), workers)
	partials := make([][]float64, len(chunks))
	for i, c := range chunks {
		i, c := i, c
		pool.Submit(func() {
			partials[i] = ForSources(g, sources[c.Start:c.End])
		})
	}
	pool.Wait()

	acc := make([]float64, g.NumVertices())
	for _, p := range partials {
		for v := range p {
			acc[v] += p[v]
		}
	}

	return Finalize(g, acc, len(sources), seed), nil
}
