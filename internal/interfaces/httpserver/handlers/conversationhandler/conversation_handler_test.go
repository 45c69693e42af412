package conversationhandler

import (
	"context"
	"testing"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	conversationrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

func newTestHandler(t *testing.T) (*ConversationHandler, *conversation.Service) {
	t.Helper()
	svc := conversation.NewService(conversation.NewMemoryRepository())
	return NewConversationHandler(svc), svc
}

func TestCreateMessageAppendsToConversation(t *testing.T) {
	handler, svc := newTestHandler(t)
	conv, err := svc.CreateConversation(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	first, err := handler.CreateMessage(context.Background(), conv.PublicID, conversationrequests.CreateMessageRequest{
		Role:    string(conversation.RoleUser),
		Content: "imported question",
	})
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	second, err := handler.CreateMessage(context.Background(), conv.PublicID, conversationrequests.CreateMessageRequest{
		Role:     string(conversation.RoleAssistant),
		Content:  "imported answer",
		Metadata: map[string]string{"model": "gpt-4o-mini"},
	})
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if first.SequenceNumber != 0 || second.SequenceNumber != 1 {
		t.Fatalf("messages out of order: %d then %d", first.SequenceNumber, second.SequenceNumber)
	}
	if second.Metadata["model"] != "gpt-4o-mini" {
		t.Fatalf("metadata not persisted: %v", second.Metadata)
	}

	reloaded, err := svc.GetConversation(context.Background(), conv.PublicID)
	if err != nil {
		t.Fatalf("failed to reload conversation: %v", err)
	}
	if reloaded.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", reloaded.MessageCount())
	}
	if reloaded.Messages[1].Content != "imported answer" {
		t.Fatalf("unexpected last message: %+v", reloaded.Messages[1])
	}
}

func TestCreateMessageRejectsUnknownRole(t *testing.T) {
	handler, svc := newTestHandler(t)
	conv, err := svc.CreateConversation(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	_, err = handler.CreateMessage(context.Background(), conv.PublicID, conversationrequests.CreateMessageRequest{
		Role:    "operator",
		Content: "hello",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected VALIDATION error for unknown role, got %v", err)
	}
}

func TestCreateMessageUnknownConversation(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.CreateMessage(context.Background(), "conv_0000000000000000", conversationrequests.CreateMessageRequest{
		Role:    string(conversation.RoleUser),
		Content: "hello",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown conversation, got %v", err)
	}
}
