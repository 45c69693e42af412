package inference

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Options carries the generation parameters passed through opaquely from the
// caller to the backend.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completion is the result of a blocking completion call.
type Completion struct {
	Text    string
	ModelID string
	Usage   openai.Usage
}

// StreamEventType identifies the kind of a normalized stream event.
type StreamEventType string

const (
	StreamEventFragment StreamEventType = "fragment"
	StreamEventDone     StreamEventType = "done"
	StreamEventError    StreamEventType = "error"
)

// StreamEvent is one element of the normalized token sequence produced by
// StreamComplete. The sequence is finite and non-restartable, terminated by
// exactly one Done or Error event.
type StreamEvent struct {
	Type StreamEventType
	Text string
	Err  error
}

// Gateway abstracts the language-model backend. Implementations translate the
// backend's wire framing into the normalized StreamEvent sequence and map
// backend failures onto the typed error taxonomy:
// MODEL_UNAVAILABLE (retryable), RATE_LIMITED (back off), VALIDATION (not
// retryable).
type Gateway interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Completion, error)
	StreamComplete(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (<-chan StreamEvent, error)
}
