package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-centrality/pkg/comm"
	"github.com/dd0wney/cluso-centrality/pkg/logging"
)

// Local is a cluster of worker goroutines plus the coordinator-side
// communicator, all within this process. Lifecycle mirrors the usual
// bring-up/teardown contract: Start blocks until every worker is reachable,
// Close tears everything down, and nothing may be used after Close.
type Local struct {
	cfg          Config
	communicator *comm.Communicator
	workers      []*worker
	log          logging.Logger

	mu     sync.Mutex
	closed bool
}

// Start brings up a local cluster and blocks until all workers have answered
// the readiness survey. On any failure everything already started is torn
// down before returning.
func Start(cfg Config) (*Local, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	addrs := cfg.Addrs
	if addrs == (comm.Addrs{}) {
		addrs = comm.InprocAddrs("cluso-centrality-" + uuid.NewString())
	}

	log := logging.DefaultLogger().With(logging.Component("cluster"))
	log.Info("starting local cluster", logging.Int("workers", cfg.Workers))

	communicator, err := comm.NewCommunicator(addrs, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("starting communicator: %w", err)
	}

	l := &Local{
		cfg:          cfg,
		communicator: communicator,
		log:          log,
	}

	for rank := 0; rank < cfg.Workers; rank++ {
		w, err := startWorker(addrs, rank)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("starting worker %d: %w", rank, err)
		}
		l.workers = append(l.workers, w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReadyTimeout)
	defer cancel()
	if err := communicator.WaitReady(ctx); err != nil {
		l.Close()
		return nil, err
	}

	log.Info("cluster ready", logging.Int("workers", cfg.Workers))
	return l, nil
}

// Client returns a handle for submitting work to this cluster. The handle is
// only valid while the cluster is live.
func (l *Local) Client() *Client {
	return &Client{local: l}
}

// Close broadcasts shutdown, stops every worker, and releases the
// communicator. Safe to call more than once.
func (l *Local) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	// Best effort: workers also stop when their sockets close below
	_ = l.communicator.Broadcast(comm.MsgShutdown, nil)

	for _, w := range l.workers {
		w.close()
	}

	err := l.communicator.Close()
	l.log.Info("cluster stopped")
	return err
}

func (l *Local) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
