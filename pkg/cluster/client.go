package cluster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-centrality/pkg/centrality"
	"github.com/dd0wney/cluso-centrality/pkg/comm"
	"github.com/dd0wney/cluso-centrality/pkg/graph"
	"github.com/dd0wney/cluso-centrality/pkg/logging"
)

// Client submits work to a live local cluster. It remembers the graph it
// replicated so distributed results can be finalised coordinator-side.
type Client struct {
	local *Local

	mu            sync.Mutex
	graph         *graph.Graph
	snapshotBytes int
	closed        bool
}

// Replicate pushes the graph to every worker and waits for all of them to
// confirm installation. This is the one-time amortised step before any
// number of distributed computations.
func (c *Client) Replicate(ctx context.Context, g *graph.Graph) error {
	if err := c.usable(); err != nil {
		return err
	}

	snapshotID := uuid.NewString()
	payload := comm.SnapshotPayload{
		SnapshotID: snapshotID,
		Graph:      graph.EncodeSnapshot(g),
	}

	log := logging.DefaultLogger().With(logging.Component("client"))
	log.Info("replicating graph",
		logging.Int("vertices", g.NumVertices()),
		logging.Int("edges", g.NumEdges()),
		logging.Int("snapshot_bytes", len(payload.Graph)))

	if err := c.local.communicator.Broadcast(comm.MsgSnapshot, payload); err != nil {
		return fmt.Errorf("broadcasting snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.local.cfg.ReplicateTimeout)
	defer cancel()
	if err := c.local.communicator.CollectSnapshotAcks(ctx, snapshotID); err != nil {
		return err
	}

	c.mu.Lock()
	c.graph = g
	c.snapshotBytes = len(payload.Graph)
	c.mu.Unlock()
	return nil
}

// SnapshotSize reports the compressed size of the last replicated snapshot
// in bytes, or zero before any replication.
func (c *Client) SnapshotSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotBytes
}

// Betweenness runs one distributed approximate betweenness-centrality
// computation with the given sampling parameters, blocking until every
// worker's partial has been folded in. The graph must have been replicated.
func (c *Client) Betweenness(ctx context.Context, k int, seed int64) (*centrality.Result, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	g := c.graph
	c.mu.Unlock()
	if g == nil {
		return nil, ErrNotReplicated
	}

	job := comm.JobRequest{
		JobID:      uuid.NewString(),
		SampleSize: k,
		Seed:       seed,
		NumWorkers: c.local.communicator.Workers(),
	}

	log := logging.DefaultLogger().With(logging.Component("client"))
	log.Info("dispatching distributed job",
		logging.String("job_id", job.JobID),
		logging.Int("sample_size", k),
		logging.Int64("seed", seed),
		logging.Int("workers", job.NumWorkers))

	if err := c.local.communicator.Broadcast(comm.MsgJob, job); err != nil {
		return nil, fmt.Errorf("broadcasting job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.local.cfg.JobTimeout)
	defer cancel()
	partials, err := c.local.communicator.CollectPartials(ctx, job.JobID)
	if err != nil {
		return nil, err
	}

	// Fold in rank order so the result is stable run to run
	sort.Slice(partials, func(i, j int) bool { return partials[i].Rank < partials[j].Rank })

	acc := make([]float64, g.NumVertices())
	sampleSize := 0
	for _, p := range partials {
		sampleSize += p.Sources
		for v := range p.Values {
			acc[v] += p.Values[v]
		}
	}

	return centrality.Finalize(g, acc, sampleSize, seed), nil
}

// Close invalidates the client handle. The cluster itself stays up until
// Local.Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) usable() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || c.local.isClosed() {
		return ErrClusterClosed
	}
	return nil
}
