package conversation

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/functional"
)

// DefaultWindowSize is the number of prior user/assistant messages included in
// the context sent to the model.
const DefaultWindowSize = 15

// WindowBuilder derives the bounded message list sent to the model from a
// conversation's history plus a system directive. The window is a fixed-size
// slice of the most recent messages; older context is dropped once a
// conversation outgrows it.
type WindowBuilder struct {
	systemPrompt string
	size         int
}

// NewWindowBuilder creates a builder with the given persona/instruction text
// and window size. A non-positive size falls back to DefaultWindowSize.
func NewWindowBuilder(systemPrompt string, size int) *WindowBuilder {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &WindowBuilder{
		systemPrompt: systemPrompt,
		size:         size,
	}
}

// Size returns the configured window size.
func (b *WindowBuilder) Size() int {
	return b.size
}

// Build returns [system] + the last N user/assistant messages in original
// order. It never mutates the conversation. A conversation with no eligible
// messages yields [system] only.
func (b *WindowBuilder) Build(conv *Conversation) []openai.ChatCompletionMessage {
	result := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: b.systemPrompt,
		},
	}
	if conv == nil {
		return result
	}

	eligible := functional.Filter(conv.Messages, func(m Message) bool {
		return m.Role == RoleUser || m.Role == RoleAssistant
	})

	if len(eligible) > b.size {
		eligible = eligible[len(eligible)-b.size:]
	}

	for _, m := range eligible {
		result = append(result, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return result
}
