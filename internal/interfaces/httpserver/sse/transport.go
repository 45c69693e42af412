// Package sse adapts a gin response writer into a turn transport that emits
// server-sent events.
package sse

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// Frame is the wire shape of one SSE data payload.
type Frame struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const (
	frameTypeFragment = "fragment"
	frameTypeDone     = "done"
	frameTypeError    = "error"
)

// Transport streams turn output over SSE. Each fragment write carries its own
// deadline so one stalled client cannot pin a turn indefinitely.
type Transport struct {
	reqCtx       *gin.Context
	controller   *http.ResponseController
	writeTimeout time.Duration
	terminated   bool
}

// PrepareHeaders configures the response for server-sent events.
func PrepareHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")
}

// NewTransport wraps the request's response writer. A non-positive
// writeTimeout disables per-write deadlines.
func NewTransport(c *gin.Context, writeTimeout time.Duration) *Transport {
	return &Transport{
		reqCtx:       c,
		controller:   http.NewResponseController(c.Writer),
		writeTimeout: writeTimeout,
	}
}

// Send writes one fragment frame and flushes it.
func (t *Transport) Send(fragment string) error {
	if t.terminated {
		return platformerrors.NewError(t.reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeTransportClosed, "transport already terminated", nil, "b1d3f5a7-9c1e-4b3d-8f0a-2c4e6a8b0d23")
	}
	return t.writeFrame(Frame{Type: frameTypeFragment, Text: fragment})
}

// SendError writes the terminal error frame. Further writes are rejected.
func (t *Transport) SendError(reason string) error {
	if t.terminated {
		return nil
	}
	t.terminated = true
	return t.writeFrame(Frame{Type: frameTypeError, Reason: reason})
}

// Close writes the done frame unless an error frame already ended the turn.
func (t *Transport) Close() error {
	if t.terminated {
		return nil
	}
	t.terminated = true
	return t.writeFrame(Frame{Type: frameTypeDone})
}

func (t *Transport) writeFrame(frame Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	if t.writeTimeout > 0 {
		if err := t.controller.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}

	if _, err := t.reqCtx.Writer.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := t.reqCtx.Writer.Write(payload); err != nil {
		return err
	}
	if _, err := t.reqCtx.Writer.Write([]byte("\n\n")); err != nil {
		return err
	}
	t.reqCtx.Writer.Flush()
	return nil
}
