package cluster

import (
	"sync"

	"github.com/dd0wney/cluso-centrality/pkg/centrality"
	"github.com/dd0wney/cluso-centrality/pkg/comm"
	"github.com/dd0wney/cluso-centrality/pkg/graph"
	"github.com/dd0wney/cluso-centrality/pkg/logging"
	"github.com/dd0wney/cluso-centrality/pkg/partition"
)

// worker is one rank of the local cluster. It runs two goroutines: a survey
// responder that keeps answering readiness surveys, and a broadcast loop that
// installs snapshots and executes jobs.
type worker struct {
	link *comm.WorkerLink
	log  logging.Logger

	stop chan struct{}
	wg   sync.WaitGroup

	graph *graph.Graph // replicated copy, set by the snapshot handler
}

func startWorker(addrs comm.Addrs, rank int) (*worker, error) {
	link, err := comm.DialWorker(addrs, rank)
	if err != nil {
		return nil, err
	}

	w := &worker{
		link: link,
		log: logging.DefaultLogger().With(
			logging.Component("worker"),
			logging.Int("rank", rank)),
		stop: make(chan struct{}),
	}

	w.wg.Add(2)
	go w.respondLoop()
	go w.broadcastLoop()
	return w, nil
}

// respondLoop answers readiness surveys until the worker stops
func (w *worker) respondLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		default:
		}
		// Errors here are either poll timeouts (no survey pending) or the
		// socket closing underneath us; both just mean "check stop and retry"
		_ = w.link.AnswerSurvey()
	}
}

// broadcastLoop installs snapshots and executes jobs until shutdown
func (w *worker) broadcastLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		msg, err := w.link.RecvBroadcast()
		if err != nil {
			select {
			case <-w.stop:
			default:
				w.log.Debug("broadcast receive failed", logging.Error(err))
			}
			return
		}
		if msg == nil {
			continue
		}

		switch msg.Type {
		case comm.MsgSnapshot:
			w.handleSnapshot(msg)
		case comm.MsgJob:
			w.handleJob(msg)
		case comm.MsgShutdown:
			w.log.Debug("shutdown received")
			return
		}
	}
}

func (w *worker) handleSnapshot(msg *comm.Message) {
	var payload comm.SnapshotPayload
	if err := msg.Decode(&payload); err != nil {
		w.log.Error("malformed snapshot", logging.Error(err))
		w.link.SendError(comm.ErrorReport{Message: "malformed snapshot: " + err.Error()})
		return
	}

	g, err := graph.DecodeSnapshot(payload.Graph)
	if err != nil {
		w.log.Error("snapshot decode failed", logging.Error(err))
		w.link.SendError(comm.ErrorReport{Message: "snapshot decode failed: " + err.Error()})
		return
	}

	w.graph = g
	w.log.Debug("snapshot installed",
		logging.Int("vertices", g.NumVertices()),
		logging.Int("edges", g.NumEdges()))

	w.link.SendSnapshotAck(comm.SnapshotAck{
		SnapshotID: payload.SnapshotID,
		Vertices:   g.NumVertices(),
		Edges:      g.NumEdges(),
	})
}

func (w *worker) handleJob(msg *comm.Message) {
	var job comm.JobRequest
	if err := msg.Decode(&job); err != nil {
		w.log.Error("malformed job", logging.Error(err))
		w.link.SendError(comm.ErrorReport{Message: "malformed job: " + err.Error()})
		return
	}

	if w.graph == nil {
		w.link.SendError(comm.ErrorReport{JobID: job.JobID, Message: "no snapshot installed"})
		return
	}

	// Every rank derives the same sample, then takes its own slice of it
	sources, err := centrality.SampleSources(w.graph, job.SampleSize, job.Seed)
	if err != nil {
		w.link.SendError(comm.ErrorReport{JobID: job.JobID, Message: err.Error()})
		return
	}

	ranges := partition.SplitRange(len(sources), job.NumWorkers)
	mine := sources[ranges[w.link.Rank()].Start:ranges[w.link.Rank()].End]

	partial := comm.PartialResult{
		JobID:   job.JobID,
		Sources: len(mine),
	}
	if len(mine) > 0 {
		partial.Values = centrality.ForSources(w.graph, mine)
	}

	w.log.Debug("job partial computed",
		logging.String("job_id", job.JobID),
		logging.Int("sources", len(mine)))

	if err := w.link.SendPartial(partial); err != nil {
		w.log.Error("sending partial failed", logging.Error(err))
	}
}

// close stops both loops and releases the link
func (w *worker) close() {
	close(w.stop)
	w.link.Close()
	w.wg.Wait()
}
