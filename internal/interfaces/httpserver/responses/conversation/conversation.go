package conversationresponses

import (
	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/functional"
)

// ConversationResponse represents a conversation without its messages
type ConversationResponse struct {
	ID           string  `json:"id"`
	Object       string  `json:"object"`
	Title        *string `json:"title,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    int64   `json:"created_at"`
	LastActivity int64   `json:"last_activity"`
}

// MessageResponse represents one message in a conversation
type MessageResponse struct {
	ID             string            `json:"id"`
	Role           string            `json:"role"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	SequenceNumber int               `json:"sequence_number"`
	CreatedAt      int64             `json:"created_at"`
}

// ConversationDetailResponse represents a conversation with its full history
type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

// ConversationListResponse represents a paginated list of conversations
type ConversationListResponse struct {
	Object  string                 `json:"object"`
	Data    []ConversationResponse `json:"data"`
	HasMore bool                   `json:"has_more"`
	Total   int64                  `json:"total"`
}

// ConversationDeletedResponse represents the delete confirmation response
type ConversationDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// MessageDeletedResponse represents the message delete confirmation response
type MessageDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// NewConversationResponse creates a response from a domain conversation
func NewConversationResponse(conv *conversation.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:           conv.PublicID,
		Object:       "conversation",
		Title:        conv.Title,
		Status:       string(conv.Status),
		CreatedAt:    conv.CreatedAt.Unix(),
		LastActivity: conv.LastActivity().Unix(),
	}
}

// NewMessageResponse creates a response from a domain message
func NewMessageResponse(msg *conversation.Message) *MessageResponse {
	return &MessageResponse{
		ID:             msg.PublicID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Metadata:       msg.Metadata,
		SequenceNumber: msg.SequenceNumber,
		CreatedAt:      msg.CreatedAt.Unix(),
	}
}

// NewConversationDetailResponse creates a response including message history
func NewConversationDetailResponse(conv *conversation.Conversation) *ConversationDetailResponse {
	messages := functional.Map(conv.Messages, func(msg conversation.Message) MessageResponse {
		return *NewMessageResponse(&msg)
	})
	return &ConversationDetailResponse{
		ConversationResponse: *NewConversationResponse(conv),
		Messages:             messages,
	}
}

// NewConversationListResponse creates a conversation list response
func NewConversationListResponse(conversations []*conversation.Conversation, hasMore bool, total int64) *ConversationListResponse {
	data := make([]ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		data = append(data, *NewConversationResponse(conv))
	}

	return &ConversationListResponse{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
		Total:   total,
	}
}

// NewConversationDeletedResponse creates a delete response
func NewConversationDeletedResponse(publicID string) *ConversationDeletedResponse {
	return &ConversationDeletedResponse{
		ID:      publicID,
		Object:  "conversation.deleted",
		Deleted: true,
	}
}

// NewMessageDeletedResponse creates a message delete response
func NewMessageDeletedResponse(publicID string) *MessageDeletedResponse {
	return &MessageDeletedResponse{
		ID:      publicID,
		Object:  "conversation.message.deleted",
		Deleted: true,
	}
}
