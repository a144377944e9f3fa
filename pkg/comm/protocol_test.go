package comm

import (
	"testing"
)

func TestMessage_EnvelopeRoundTrip(t *testing.T) {
	job := JobRequest{JobID: "job-1", SampleSize: 1024, Seed: 123, NumWorkers: 4}

	msg, err := NewMessage(MsgJob, job)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	if decoded.Type != MsgJob {
		t.Errorf("Type = %v, want %v", decoded.Type, MsgJob)
	}

	var got JobRequest
	if err := decoded.Decode(&got); err != nil {
		t.Fatalf("Payload decode failed: %v", err)
	}
	if got != job {
		t.Errorf("Payload = %+v, want %+v", got, job)
	}
}

func TestDecodeMessage_Garbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Error("Expected error decoding garbage")
	}
}

func TestMessageType_String(t *testing.T) {
	cases := map[MessageType]string{
		MsgSurvey:        "survey",
		MsgReady:         "ready",
		MsgShutdown:      "shutdown",
		MsgSnapshot:      "snapshot",
		MsgJob:           "job",
		MsgPartial:       "partial",
		MsgError:         "error",
		MessageType(200): "unknown",
	}
	for mt, want := range cases {
		if mt.String() != want {
			t.Errorf("%d.String() = %q, want %q", mt, mt.String(), want)
		}
	}
}
