package verify

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-centrality/pkg/centrality"
)

func result(k int, seed int64, scores ...centrality.Score) *centrality.Result {
	return &centrality.Result{Scores: scores, SampleSize: k, Seed: seed}
}

func TestCompare_IdenticalResultsPass(t *testing.T) {
	a := result(4, 123,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.2},
		centrality.Score{Vertex: 2, Score: 0.3},
	)
	b := result(4, 123,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.2},
		centrality.Score{Vertex: 2, Score: 0.3},
	)

	report, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !report.Pass {
		t.Error("Identical results did not pass")
	}
	if report.Compared != 3 {
		t.Errorf("Expected 3 comparisons, got %d", report.Compared)
	}
}

func TestCompare_ReindexesByVertex(t *testing.T) {
	// Same scores, different orderings: must still pass after sorting
	a := result(2, 7,
		centrality.Score{Vertex: 2, Score: 0.3},
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.2},
	)
	b := result(2, 7,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.2},
		centrality.Score{Vertex: 2, Score: 0.3},
	)

	report, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !report.Pass {
		t.Error("Permuted but equal results did not pass")
	}
}

func TestCompare_DivergentScoresFail(t *testing.T) {
	a := result(2, 7,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.5},
	)
	b := result(2, 7,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.9},
	)

	report, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if report.Pass {
		t.Error("Divergent results passed")
	}
	if report.FirstMismatch != 1 {
		t.Errorf("FirstMismatch = %d, want 1", report.FirstMismatch)
	}
	if report.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1", report.Mismatches)
	}
}

func TestCompare_WithinExplicitTolerance(t *testing.T) {
	a := result(2, 7, centrality.Score{Vertex: 0, Score: 0.5})
	b := result(2, 7, centrality.Score{Vertex: 0, Score: 0.5 + 5e-7})

	report, err := Compare(a, b, Options{AbsTol: 1e-6})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !report.Pass {
		t.Errorf("Difference below tolerance failed, max diff %g", report.MaxAbsDiff)
	}
}

func TestCompare_LengthMismatch(t *testing.T) {
	a := result(2, 7, centrality.Score{Vertex: 0, Score: 0.1})
	b := result(2, 7,
		centrality.Score{Vertex: 0, Score: 0.1},
		centrality.Score{Vertex: 1, Score: 0.2},
	)

	if _, err := Compare(a, b, DefaultOptions()); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}

func TestCompare_VertexSetMismatch(t *testing.T) {
	a := result(2, 7, centrality.Score{Vertex: 0, Score: 0.1})
	b := result(2, 7, centrality.Score{Vertex: 5, Score: 0.1})

	if _, err := Compare(a, b, DefaultOptions()); !errors.Is(err, ErrVertexSetMismatch) {
		t.Errorf("Expected ErrVertexSetMismatch, got %v", err)
	}
}

func TestCompare_ParamsMismatch(t *testing.T) {
	a := result(1024, 123, centrality.Score{Vertex: 0, Score: 0.1})
	b := result(1024, 456, centrality.Score{Vertex: 0, Score: 0.1})

	if _, err := Compare(a, b, DefaultOptions()); !errors.Is(err, ErrParamsMismatch) {
		t.Errorf("Expected ErrParamsMismatch, got %v", err)
	}
}
