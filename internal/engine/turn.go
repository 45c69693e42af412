package engine

import (
	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
)

// TurnState is the terminal outcome of a turn. A turn that persisted any
// assistant text is completed, even when the stream was cut short; failed is
// reserved for turns that produced nothing.
type TurnState string

const (
	TurnStateCompleted TurnState = "completed"
	TurnStateFailed    TurnState = "failed"
)

// TurnRequest describes one user turn to run against a conversation.
type TurnRequest struct {
	ConversationID string
	UserContent    string

	// Provider selects a configured backend; empty means the default.
	Provider string
	// Model overrides the provider's default model when set.
	Model       string
	Temperature float32
	MaxTokens   int
}

// TurnResult is the outcome of a finished turn. Partial is true when the
// assistant text was cut short by an error, timeout, or disconnect; whatever
// text was produced is still persisted.
type TurnResult struct {
	State            TurnState
	Conversation     *conversation.Conversation
	UserMessage      *conversation.Message
	AssistantMessage *conversation.Message
	Text             string
	Model            string
	Partial          bool
	FailureReason    string
}

// Metadata keys stamped onto persisted assistant messages.
const (
	metadataKeyModel      = "model"
	metadataKeyIncomplete = "incomplete"
)
