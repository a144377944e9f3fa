package verify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-centrality/pkg/centrality"
)

var (
	// ErrLengthMismatch indicates the two results score different vertex counts
	ErrLengthMismatch = errors.New("results have different lengths")

	// ErrVertexSetMismatch indicates the results cover different vertex sets
	ErrVertexSetMismatch = errors.New("results cover different vertices")

	// ErrParamsMismatch indicates the results were produced with different
	// sampling parameters, so comparing them is meaningless
	ErrParamsMismatch = errors.New("results have different sampling parameters")
)

// Options are the element-wise tolerances: a and b agree at a vertex when
// |a-b| <= AbsTol + RelTol*|b|.
type Options struct {
	RelTol float64
	AbsTol float64
}

// DefaultOptions mirrors the comparison defaults of the usual numeric
// allclose check (rtol=1e-5, atol=1e-8).
func DefaultOptions() Options {
	return Options{RelTol: 1e-5, AbsTol: 1e-8}
}

// Report is the outcome of comparing two centrality results
type Report struct {
	Pass          bool
	Compared      int
	Mismatches    int
	MaxAbsDiff    float64
	FirstMismatch uint64 // vertex ID of the first disagreement, valid when !Pass
}

// Compare reindexes both results by vertex ID and checks element-wise
// approximate equality of the score sequences. Both results must have been
// produced with identical sampling parameters.
func Compare(a, b *centrality.Result, opts Options) (*Report, error) {
	if a.SampleSize != b.SampleSize || a.Seed != b.Seed {
		return nil, fmt.Errorf("%w: (k=%d seed=%d) vs (k=%d seed=%d)",
			ErrParamsMismatch, a.SampleSize, a.Seed, b.SampleSize, b.Seed)
	}
	if len(a.Scores) != len(b.Scores) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a.Scores), len(b.Scores))
	}

	as := sortedByVertex(a.Scores)
	bs := sortedByVertex(b.Scores)

	report := &Report{Pass: true, Compared: len(as)}
	for i := range as {
		if as[i].Vertex != bs[i].Vertex {
			return nil, fmt.Errorf("%w: position %d has %d vs %d",
				ErrVertexSetMismatch, i, as[i].Vertex, bs[i].Vertex)
		}

		diff := math.Abs(as[i].Score - bs[i].Score)
		if diff > report.MaxAbsDiff {
			report.MaxAbsDiff = diff
		}
		if diff > opts.AbsTol+opts.RelTol*math.Abs(bs[i].Score) {
			if report.Pass {
				report.FirstMismatch = as[i].Vertex
			}
			report.Pass = false
			report.Mismatches++
		}
	}

	return report, nil
}

// sortedByVertex returns a copy sorted by vertex ID ascending
func sortedByVertex(scores []centrality.Score) []centrality.Score {
	out := make([]centrality.Score, len(scores))
	copy(out, scores)
	sort.Slice(out, func(i, j int) bool { return out[i].Vertex < out[j].Vertex })
	return out
}
