package sse

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestTransport(t *testing.T) (*Transport, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/v1/chat", nil)
	return NewTransport(c, 0), recorder
}

func decodeFrames(t *testing.T, body string) []Frame {
	t.Helper()
	var frames []Frame
	for _, line := range strings.Split(body, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var frame Frame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			t.Fatalf("bad frame %q: %v", payload, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestTransportFragmentsThenDone(t *testing.T) {
	transport, recorder := newTestTransport(t)

	if err := transport.Send("hel"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := transport.Send("lo"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	frames := decodeFrames(t, recorder.Body.String())
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].Type != "fragment" || frames[0].Text != "hel" {
		t.Fatalf("unexpected first frame: %+v", frames[0])
	}
	if frames[2].Type != "done" {
		t.Fatalf("expected done frame, got %+v", frames[2])
	}
}

func TestTransportErrorSuppressesDone(t *testing.T) {
	transport, recorder := newTestTransport(t)

	if err := transport.Send("partial"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := transport.SendError("MODEL_UNAVAILABLE"); err != nil {
		t.Fatalf("SendError: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close after error: %v", err)
	}

	frames := decodeFrames(t, recorder.Body.String())
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	last := frames[len(frames)-1]
	if last.Type != "error" || last.Reason != "MODEL_UNAVAILABLE" {
		t.Fatalf("expected terminal error frame, got %+v", last)
	}
}

func TestTransportRejectsSendAfterTermination(t *testing.T) {
	transport, _ := newTestTransport(t)

	if err := transport.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := transport.Send("late"); err == nil {
		t.Fatal("expected error sending after close")
	}
}

func TestTransportCloseIsIdempotent(t *testing.T) {
	transport, recorder := newTestTransport(t)

	if err := transport.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	frames := decodeFrames(t, recorder.Body.String())
	if len(frames) != 1 {
		t.Fatalf("expected exactly one done frame, got %d", len(frames))
	}
}
