package comm

import (
	"context"
	"testing"
	"time"
)

// TestSendPartial_StampsSenderIdentity guards the coordinator's per-rank
// dedupe: if partials arrived without the sender's rank, the coordinator
// would treat every rank after the first as a duplicate of rank 0 and
// collection would never complete on a multi-worker cluster.
func TestSendPartial_StampsSenderIdentity(t *testing.T) {
	addrs := InprocAddrs("partial-identity")

	c, err := NewCommunicator(addrs, 2)
	if err != nil {
		t.Fatalf("NewCommunicator failed: %v", err)
	}
	defer c.Close()

	links := make([]*WorkerLink, 2)
	for rank := 0; rank < 2; rank++ {
		w, err := DialWorker(addrs, rank)
		if err != nil {
			t.Fatalf("DialWorker rank %d failed: %v", rank, err)
		}
		defer w.Close()
		links[rank] = w

		err = w.SendPartial(PartialResult{
			JobID:   "job-1",
			Sources: rank + 1,
			Values:  []float64{float64(rank)},
		})
		if err != nil {
			t.Fatalf("SendPartial rank %d failed: %v", rank, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	partials, err := c.CollectPartials(ctx, "job-1")
	if err != nil {
		t.Fatalf("CollectPartials failed: %v", err)
	}
	if len(partials) != 2 {
		t.Fatalf("Collected %d partials, want 2", len(partials))
	}

	seen := make(map[int]bool)
	for _, p := range partials {
		if p.Rank < 0 || p.Rank >= len(links) {
			t.Fatalf("Partial carries rank %d, want 0 or 1", p.Rank)
		}
		if seen[p.Rank] {
			t.Fatalf("Rank %d collected twice", p.Rank)
		}
		seen[p.Rank] = true
		if p.WorkerID != links[p.Rank].ID() {
			t.Errorf("Rank %d partial carries worker id %q, want %q", p.Rank, p.WorkerID, links[p.Rank].ID())
		}
		if p.Sources != p.Rank+1 {
			t.Errorf("Rank %d partial carries sources %d, want %d", p.Rank, p.Sources, p.Rank+1)
		}
	}
}
