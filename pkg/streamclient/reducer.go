// Package streamclient maintains a client-side view of a conversation while a
// turn streams in. It is the consumer counterpart of the server's SSE frames:
// callers feed fragments and terminal frames into the reducer and render the
// message list it exposes.
package streamclient

import (
	"errors"
	"sync"
)

// ErrTurnInProgress is returned when a turn is started while another is still
// streaming.
var ErrTurnInProgress = errors.New("streamclient: turn already in progress")

// Message roles mirrored from the server.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the rendered conversation view. Pending is true
// while the assistant reply is still streaming. FailureReason annotates a
// reply that was cut short.
type Message struct {
	Role          string
	Text          string
	Pending       bool
	FailureReason string
}

// TurnToken identifies one turn. Frames carrying a stale token are ignored,
// so late events from an abandoned stream cannot corrupt the view.
type TurnToken uint64

// Reducer folds stream frames into a conversation view. Safe for concurrent
// use; renders see consistent snapshots.
type Reducer struct {
	mu          sync.Mutex
	messages    []Message
	currentTurn TurnToken
	active      bool
}

// NewReducer creates an empty reducer, optionally seeded with history already
// fetched from the server.
func NewReducer(history ...Message) *Reducer {
	r := &Reducer{}
	r.messages = append(r.messages, history...)
	return r
}

// BeginTurn appends the user message and an empty pending assistant
// placeholder, and returns the token the caller must present with every
// subsequent frame of this turn.
func (r *Reducer) BeginTurn(userText string) (TurnToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return 0, ErrTurnInProgress
	}

	r.currentTurn++
	r.active = true
	r.messages = append(r.messages,
		Message{Role: RoleUser, Text: userText},
		Message{Role: RoleAssistant, Pending: true},
	)
	return r.currentTurn, nil
}

// ApplyFragment appends fragment text to the pending assistant message.
// Fragments with a stale token are dropped.
func (r *Reducer) ApplyFragment(token TurnToken, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isCurrent(token) {
		return
	}
	r.pending().Text += text
}

// CompleteTurn marks the assistant reply as final.
func (r *Reducer) CompleteTurn(token TurnToken) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isCurrent(token) {
		return
	}
	r.pending().Pending = false
	r.active = false
}

// FailTurn ends the turn with an error. A reply that already has partial text
// is kept and annotated; an empty placeholder is removed so the view shows no
// ghost message.
func (r *Reducer) FailTurn(token TurnToken, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isCurrent(token) {
		return
	}

	msg := r.pending()
	if msg.Text == "" {
		r.messages = r.messages[:len(r.messages)-1]
	} else {
		msg.Pending = false
		msg.FailureReason = reason
	}
	r.active = false
}

// Streaming reports whether a turn is currently in flight.
func (r *Reducer) Streaming() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Messages returns a snapshot of the conversation view.
func (r *Reducer) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

func (r *Reducer) isCurrent(token TurnToken) bool {
	return r.active && token == r.currentTurn
}

// pending returns the streaming assistant placeholder, always the last message
// while a turn is active.
func (r *Reducer) pending() *Message {
	return &r.messages[len(r.messages)-1]
}
