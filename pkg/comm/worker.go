package comm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/push"
	"go.nanomsg.org/mangos/v3/protocol/respondent"
	"go.nanomsg.org/mangos/v3/protocol/sub"
)

// recvPoll bounds one blocking receive on the worker side so shutdown
// checks run even when the coordinator has gone quiet
const recvPoll = 250 * time.Millisecond

// WorkerLink is one worker's half of the communicator: a respondent for
// readiness surveys, a subscriber for broadcasts, and a pusher for partials.
type WorkerLink struct {
	respond mangos.Socket
	listen  mangos.Socket
	push    mangos.Socket

	rank int
	id   string

	mu     sync.Mutex
	closed bool
}

// DialWorker connects a worker of the given rank to the coordinator.
// The subscriber is connected and subscribed before the respondent, so
// answering a readiness survey implies broadcasts will be received.
func DialWorker(addrs Addrs, rank int) (*WorkerLink, error) {
	w := &WorkerLink{
		rank: rank,
		id:   uuid.NewString(),
	}

	var err error
	if w.listen, err = sub.NewSocket(); err != nil {
		return nil, fmt.Errorf("creating sub socket: %w", err)
	}
	if err = w.listen.SetOption(mangos.OptionSubscribe, []byte{}); err != nil {
		w.listen.Close()
		return nil, fmt.Errorf("subscribing: %w", err)
	}
	if err = w.listen.Dial(addrs.Broadcast); err != nil {
		w.listen.Close()
		return nil, fmt.Errorf("dialing broadcast %s: %w", addrs.Broadcast, err)
	}

	if w.push, err = push.NewSocket(); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating push socket: %w", err)
	}
	if err = w.push.Dial(addrs.Collect); err != nil {
		w.Close()
		return nil, fmt.Errorf("dialing collect %s: %w", addrs.Collect, err)
	}

	if w.respond, err = respondent.NewSocket(); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating respondent socket: %w", err)
	}
	if err = w.respond.SetOption(mangos.OptionRecvDeadline, recvPoll); err != nil {
		w.Close()
		return nil, fmt.Errorf("setting respondent deadline: %w", err)
	}
	if err = w.respond.Dial(addrs.Survey); err != nil {
		w.Close()
		return nil, fmt.Errorf("dialing survey %s: %w", addrs.Survey, err)
	}

	if err = w.listen.SetOption(mangos.OptionRecvDeadline, recvPoll); err != nil {
		w.Close()
		return nil, fmt.Errorf("setting sub deadline: %w", err)
	}

	return w, nil
}

// ID returns the worker's unique identifier
func (w *WorkerLink) ID() string {
	return w.id
}

// Rank returns the worker's rank
func (w *WorkerLink) Rank() int {
	return w.rank
}

// AnswerSurvey waits for one readiness survey and answers it. It returns
// ErrRecvTimeout-wrapped errors when no survey arrives within the poll
// window, which callers treat as "try again".
func (w *WorkerLink) AnswerSurvey() error {
	raw, err := w.respond.Recv()
	if err != nil {
		return fmt.Errorf("receiving survey: %w", err)
	}

	msg, err := DecodeMessage(raw)
	if err != nil {
		return err
	}
	if msg.Type != MsgSurvey {
		return nil
	}

	reply, err := NewMessage(MsgReady, ReadyResponse{WorkerID: w.id, Rank: w.rank})
	if err != nil {
		return err
	}
	data, err := reply.Encode()
	if err != nil {
		return err
	}
	return w.respond.Send(data)
}

// RecvBroadcast waits up to the poll window for one broadcast message.
// A nil message with nil error means the window elapsed quietly or an
// undecodable message was dropped; an error means the socket is unusable.
func (w *WorkerLink) RecvBroadcast() (*Message, error) {
	raw, err := w.listen.Recv()
	if err != nil {
		if errors.Is(err, mangos.ErrRecvTimeout) {
			return nil, nil
		}
		return nil, fmt.Errorf("receiving broadcast: %w", err)
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return nil, nil
	}
	return msg, nil
}

// SendPartial pushes one partial result to the coordinator. The sender's
// identity is stamped here so the coordinator can dedupe by rank.
func (w *WorkerLink) SendPartial(p PartialResult) error {
	p.WorkerID = w.id
	p.Rank = w.rank
	msg, err := NewMessage(MsgPartial, p)
	if err != nil {
		return err
	}
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	return w.push.Send(raw)
}

// SendSnapshotAck confirms an installed snapshot to the coordinator
func (w *WorkerLink) SendSnapshotAck(ack SnapshotAck) error {
	ack.WorkerID = w.id
	ack.Rank = w.rank
	msg, err := NewMessage(MsgSnapshotAck, ack)
	if err != nil {
		return err
	}
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	return w.push.Send(raw)
}

// SendError reports a worker-side failure to the coordinator
func (w *WorkerLink) SendError(report ErrorReport) error {
	report.WorkerID = w.id
	report.Rank = w.rank
	msg, err := NewMessage(MsgError, report)
	if err != nil {
		return err
	}
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	return w.push.Send(raw)
}

// Close releases the worker's sockets. Safe to call more than once.
func (w *WorkerLink) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	var firstErr error
	for _, sock := range []mangos.Socket{w.respond, w.listen, w.push} {
		if sock == nil {
			continue
		}
		if err := sock.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
