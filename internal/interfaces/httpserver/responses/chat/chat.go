package chatresponses

import (
	"github.com/DigitariaWebs/corp1o1-sub005/internal/engine"
	conversationresponses "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses/conversation"
)

// TurnConversation is the post-turn snapshot of the conversation the turn ran
// against. It carries the ID of a conversation created by the turn itself.
type TurnConversation struct {
	ID           string `json:"id"`
	UpdatedAt    int64  `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// TurnResponse is the blocking (non-streaming) turn result.
type TurnResponse struct {
	Object           string                                 `json:"object"`
	Conversation     *TurnConversation                      `json:"conversation"`
	Model            string                                 `json:"model"`
	UserMessage      *conversationresponses.MessageResponse `json:"user_message,omitempty"`
	AssistantMessage *conversationresponses.MessageResponse `json:"assistant_message,omitempty"`
	Partial          bool                                   `json:"partial,omitempty"`
	FailureReason    string                                 `json:"failure_reason,omitempty"`
}

// NewTurnResponse creates a response from a finished turn.
func NewTurnResponse(conversationID string, result *engine.TurnResult) *TurnResponse {
	resp := &TurnResponse{
		Object:        "conversation.turn",
		Conversation:  &TurnConversation{ID: conversationID},
		Model:         result.Model,
		Partial:       result.Partial,
		FailureReason: result.FailureReason,
	}
	if result.Conversation != nil {
		resp.Conversation = &TurnConversation{
			ID:           result.Conversation.PublicID,
			UpdatedAt:    result.Conversation.UpdatedAt.Unix(),
			MessageCount: result.Conversation.MessageCount(),
		}
	}
	if result.UserMessage != nil {
		resp.UserMessage = conversationresponses.NewMessageResponse(result.UserMessage)
	}
	if result.AssistantMessage != nil {
		resp.AssistantMessage = conversationresponses.NewMessageResponse(result.AssistantMessage)
	}
	return resp
}
