package comm

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType represents the type of a communicator message
type MessageType uint8

const (
	// Control messages
	MsgSurvey MessageType = iota
	MsgReady
	MsgShutdown

	// Data messages
	MsgSnapshot
	MsgSnapshotAck
	MsgJob
	MsgPartial

	// Error messages
	MsgError
)

// String returns a readable name for logging
func (t MessageType) String() string {
	switch t {
	case MsgSurvey:
		return "survey"
	case MsgReady:
		return "ready"
	case MsgShutdown:
		return "shutdown"
	case MsgSnapshot:
		return "snapshot"
	case MsgSnapshotAck:
		return "snapshot_ack"
	case MsgJob:
		return "job"
	case MsgPartial:
		return "partial"
	case MsgError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the envelope every communicator payload travels in
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      []byte      `json:"data,omitempty"`
}

// NewMessage creates a message wrapping the JSON encoding of data
func NewMessage(msgType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", msgType, err)
	}
	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixNano(),
		Data:      dataBytes,
	}, nil
}

// Encode serialises the envelope for the wire
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses an envelope off the wire
func DecodeMessage(raw []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding message envelope: %w", err)
	}
	return &m, nil
}

// Decode parses the payload into v
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

// ReadyResponse is a worker's answer to a readiness survey
type ReadyResponse struct {
	WorkerID string `json:"worker_id"`
	Rank     int    `json:"rank"`
}

// SnapshotPayload replicates the full graph to every worker
type SnapshotPayload struct {
	SnapshotID string `json:"snapshot_id"`
	Graph      []byte `json:"graph"` // graph.EncodeSnapshot output
}

// SnapshotAck confirms a worker has decoded and installed a snapshot
type SnapshotAck struct {
	SnapshotID string `json:"snapshot_id"`
	WorkerID   string `json:"worker_id"`
	Rank       int    `json:"rank"`
	Vertices   int    `json:"vertices"`
	Edges      int    `json:"edges"`
}

// JobRequest broadcasts one distributed centrality job. Workers derive their
// own source slice from (SampleSize, Seed, NumWorkers, rank), so the job
// itself stays small.
type JobRequest struct {
	JobID      string `json:"job_id"`
	SampleSize int    `json:"sample_size"`
	Seed       int64  `json:"seed"`
	NumWorkers int    `json:"num_workers"`
}

// PartialResult carries one worker's raw accumulation vector back
type PartialResult struct {
	JobID    string    `json:"job_id"`
	WorkerID string    `json:"worker_id"`
	Rank     int       `json:"rank"`
	Sources  int       `json:"sources"`
	Values   []float64 `json:"values"`
}

// ErrorReport carries a worker-side failure back to the coordinator
type ErrorReport struct {
	JobID    string `json:"job_id,omitempty"`
	WorkerID string `json:"worker_id"`
	Rank     int    `json:"rank"`
	Message  string `json:"message"`
}
