package engine

// Transport delivers one turn's output to a connected client. Implementations
// own the wire framing (SSE, websocket, test capture). The contract is
// single-turn and terminal: after SendError or Close the transport accepts no
// further writes.
//
// Close emits the normal completion frame unless SendError was already called,
// so every turn ends with exactly one terminal frame.
type Transport interface {
	// Send delivers one response fragment. A non-nil error means the client
	// is gone and the turn should be cancelled.
	Send(fragment string) error

	// SendError delivers a terminal error frame with a machine-readable
	// reason.
	SendError(reason string) error

	// Close ends the turn, emitting the done frame if the turn was not
	// already terminated by SendError.
	Close() error
}
