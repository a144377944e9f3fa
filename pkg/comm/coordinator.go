package comm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/surveyor"

	// Register all transports (tcp, inproc, ipc)
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-centrality/pkg/logging"
)

var (
	// ErrCommClosed indicates use of a communicator after Close
	ErrCommClosed = errors.New("communicator is closed")

	// ErrReadyTimeout indicates not all workers answered the readiness survey
	ErrReadyTimeout = errors.New("timed out waiting for workers")

	// ErrWorkerFailure indicates a worker reported an error instead of a partial
	ErrWorkerFailure = errors.New("worker reported failure")
)

// surveyTime bounds one readiness survey round
const surveyTime = 500 * time.Millisecond

// collectPoll bounds one blocking receive while collecting partials
const collectPoll = time.Second

// Communicator is the coordinator's half of the cross-worker messaging layer.
// It owns three sockets mirroring the three patterns in use: a surveyor for
// readiness, a publisher for snapshot/job broadcast, and a puller for result
// collection. It must be explicitly Closed; no call is valid afterwards.
type Communicator struct {
	survey    mangos.Socket
	broadcast mangos.Socket
	collect   mangos.Socket

	workers int
	log     logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewCommunicator binds the coordinator sockets and returns a live
// communicator expecting the given number of workers.
func NewCommunicator(addrs Addrs, workers int) (*Communicator, error) {
	c := &Communicator{
		workers: workers,
		log:     logging.DefaultLogger().With(logging.Component("comm")),
	}

	var err error
	if c.survey, err = surveyor.NewSocket(); err != nil {
		return nil, fmt.Errorf("creating surveyor socket: %w", err)
	}
	if c.broadcast, err = pub.NewSocket(); err != nil {
		c.survey.Close()
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if c.collect, err = pull.NewSocket(); err != nil {
		c.survey.Close()
		c.broadcast.Close()
		return nil, fmt.Errorf("creating pull socket: %w", err)
	}

	for _, bind := range []struct {
		sock mangos.Socket
		addr string
	}{
		{c.survey, addrs.Survey},
		{c.broadcast, addrs.Broadcast},
		{c.collect, addrs.Collect},
	} {
		if err := bind.sock.Listen(bind.addr); err != nil {
			c.Close()
			return nil, fmt.Errorf("listening on %s: %w", bind.addr, err)
		}
	}

	if err := c.survey.SetOption(mangos.OptionSurveyTime, surveyTime); err != nil {
		c.Close()
		return nil, fmt.Errorf("setting survey time: %w", err)
	}

	return c, nil
}

// WaitReady surveys until every worker rank has answered or ctx expires.
// Workers only answer after their subscriber socket is connected, so a
// successful wait doubles as the slow-joiner barrier for the pub channel.
func (c *Communicator) WaitReady(ctx context.Context) error {
	seen := make(map[int]bool, c.workers)

	for len(seen) < c.workers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %d/%d ready", ErrReadyTimeout, len(seen), c.workers)
		}

		msg, err := NewMessage(MsgSurvey, nil)
		if err != nil {
			return err
		}
		if err := c.send(c.survey, msg); err != nil {
			return err
		}

		// Drain responses until the survey round expires
		for len(seen) < c.workers {
			raw, err := c.survey.Recv()
			if err != nil {
				break
			}
			reply, err := DecodeMessage(raw)
			if err != nil || reply.Type != MsgReady {
				continue
			}
			var ready ReadyResponse
			if err := reply.Decode(&ready); err != nil {
				continue
			}
			if !seen[ready.Rank] {
				seen[ready.Rank] = true
				c.log.Debug("worker ready",
					logging.Int("rank", ready.Rank),
					logging.String("worker_id", ready.WorkerID))
			}
		}
	}

	return nil
}

// Broadcast publishes a message to every connected worker
func (c *Communicator) Broadcast(msgType MessageType, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.send(c.broadcast, msg)
}

// CollectPartials blocks until one partial per worker rank has arrived for
// jobID, a worker reports an error, or ctx expires. Partials for other jobs
// are discarded.
func (c *Communicator) CollectPartials(ctx context.Context, jobID string) ([]PartialResult, error) {
	if err := c.collect.SetOption(mangos.OptionRecvDeadline, collectPoll); err != nil {
		return nil, fmt.Errorf("setting collect deadline: %w", err)
	}

	partials := make([]PartialResult, 0, c.workers)
	seen := make(map[int]bool, c.workers)

	for len(partials) < c.workers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collecting partials for job %s: %w", jobID, err)
		}

		raw, err := c.collect.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			return nil, fmt.Errorf("receiving partial: %w", err)
		}

		msg, err := DecodeMessage(raw)
		if err != nil {
			c.log.Warn("dropping undecodable partial", logging.Error(err))
			continue
		}

		switch msg.Type {
		case MsgPartial:
			var p PartialResult
			if err := msg.Decode(&p); err != nil {
				c.log.Warn("dropping malformed partial", logging.Error(err))
				continue
			}
			if p.JobID != jobID || seen[p.Rank] {
				continue
			}
			seen[p.Rank] = true
			partials = append(partials, p)

		case MsgError:
			var report ErrorReport
			if err := msg.Decode(&report); err != nil {
				continue
			}
			return nil, fmt.Errorf("%w: rank %d: %s", ErrWorkerFailure, report.Rank, report.Message)
		}
	}

	return partials, nil
}

// CollectSnapshotAcks blocks until every worker rank has confirmed the
// snapshot or ctx expires.
func (c *Communicator) CollectSnapshotAcks(ctx context.Context, snapshotID string) error {
	if err := c.collect.SetOption(mangos.OptionRecvDeadline, collectPoll); err != nil {
		return fmt.Errorf("setting collect deadline: %w", err)
	}

	seen := make(map[int]bool, c.workers)
	for len(seen) < c.workers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("collecting snapshot acks: %w", err)
		}

		raw, err := c.collect.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			return fmt.Errorf("receiving snapshot ack: %w", err)
		}

		msg, err := DecodeMessage(raw)
		if err != nil {
			continue
		}

		switch msg.Type {
		case MsgSnapshotAck:
			var ack SnapshotAck
			if err := msg.Decode(&ack); err != nil {
				continue
			}
			if ack.SnapshotID != snapshotID || seen[ack.Rank] {
				continue
			}
			seen[ack.Rank] = true
			c.log.Debug("snapshot replicated",
				logging.Int("rank", ack.Rank),
				logging.Int("vertices", ack.Vertices),
				logging.Int("edges", ack.Edges))

		case MsgError:
			var report ErrorReport
			if err := msg.Decode(&report); err != nil {
				continue
			}
			return fmt.Errorf("%w: rank %d: %s", ErrWorkerFailure, report.Rank, report.Message)
		}
	}

	return nil
}

// Workers returns the expected worker count
func (c *Communicator) Workers() int {
	return c.workers
}

func (c *Communicator) send(sock mangos.Socket, msg *Message) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCommClosed
	}
	c.mu.Unlock()

	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	return sock.Send(raw)
}

// Close releases all coordinator sockets. Safe to call more than once.
func (c *Communicator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var firstErr error
	for _, sock := range []mangos.Socket{c.survey, c.broadcast, c.collect} {
		if sock == nil {
			continue
		}
		if err := sock.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
