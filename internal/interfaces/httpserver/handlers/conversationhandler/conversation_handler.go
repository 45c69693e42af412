package conversationhandler

import (
	"context"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	conversationrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/conversation"
	conversationresponses "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

type ConversationHandler struct {
	conversationService *conversation.Service
}

func NewConversationHandler(conversationService *conversation.Service) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// CreateConversation creates a new conversation
func (h *ConversationHandler) CreateConversation(
	ctx context.Context,
	req conversationrequests.CreateConversationRequest,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.CreateConversation(ctx, req.Title)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to create conversation")
	}

	return conversationresponses.NewConversationResponse(conv), nil
}

// GetConversation retrieves a conversation with its message history
func (h *ConversationHandler) GetConversation(
	ctx context.Context,
	conversationID string,
) (*conversationresponses.ConversationDetailResponse, error) {
	conv, err := h.conversationService.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get conversation")
	}

	return conversationresponses.NewConversationDetailResponse(conv), nil
}

// ListConversations lists conversations ordered by most recent activity
func (h *ConversationHandler) ListConversations(
	ctx context.Context,
	limit, offset int,
) (*conversationresponses.ConversationListResponse, error) {
	conversations, total, err := h.conversationService.ListConversations(ctx, limit, offset)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list conversations")
	}

	hasMore := int64(offset+len(conversations)) < total
	return conversationresponses.NewConversationListResponse(conversations, hasMore, total), nil
}

// UpdateConversation renames a conversation
func (h *ConversationHandler) UpdateConversation(
	ctx context.Context,
	conversationID string,
	req conversationrequests.UpdateConversationRequest,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.UpdateTitle(ctx, conversationID, req.Title)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to update conversation")
	}

	return conversationresponses.NewConversationResponse(conv), nil
}

// ArchiveConversation marks a conversation as archived
func (h *ConversationHandler) ArchiveConversation(
	ctx context.Context,
	conversationID string,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.ArchiveConversation(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to archive conversation")
	}

	return conversationresponses.NewConversationResponse(conv), nil
}

// DeleteConversation deletes a conversation and its messages
func (h *ConversationHandler) DeleteConversation(
	ctx context.Context,
	conversationID string,
) (*conversationresponses.ConversationDeletedResponse, error) {
	if err := h.conversationService.DeleteConversation(ctx, conversationID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete conversation")
	}

	return conversationresponses.NewConversationDeletedResponse(conversationID), nil
}

// CreateMessage appends a message to the end of a conversation
func (h *ConversationHandler) CreateMessage(
	ctx context.Context,
	conversationID string,
	req conversationrequests.CreateMessageRequest,
) (*conversationresponses.MessageResponse, error) {
	msg, err := h.conversationService.AppendMessage(ctx, conversationID, conversation.Role(req.Role), req.Content, req.Metadata)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to append message")
	}

	return conversationresponses.NewMessageResponse(msg), nil
}

// UpdateMessage replaces the content of one message
func (h *ConversationHandler) UpdateMessage(
	ctx context.Context,
	conversationID, messageID string,
	req conversationrequests.UpdateMessageRequest,
) (*conversationresponses.MessageResponse, error) {
	msg, err := h.conversationService.EditMessage(ctx, conversationID, messageID, req.Content)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to update message")
	}

	return conversationresponses.NewMessageResponse(msg), nil
}

// DeleteMessage removes one message from a conversation
func (h *ConversationHandler) DeleteMessage(
	ctx context.Context,
	conversationID, messageID string,
) (*conversationresponses.MessageDeletedResponse, error) {
	if err := h.conversationService.DeleteMessage(ctx, conversationID, messageID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete message")
	}

	return conversationresponses.NewMessageDeletedResponse(messageID), nil
}
