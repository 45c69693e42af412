package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/metrics"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/idgen"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/stringutils"
)

// Service handles business logic for conversations. It is safe for concurrent
// use across conversations; message appends within a single conversation are
// serialized by a per-conversation lock so concurrent turns cannot interleave
// message order.
type Service struct {
	repo Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new conversation service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the append lock for one conversation, creating it on first use.
func (s *Service) lockFor(publicID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[publicID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[publicID] = lock
	}
	return lock
}

// ===============================================
// Conversation CRUD
// ===============================================

// CreateConversation creates a conversation with a fresh public ID. A nil
// title is allowed; it is derived later from the first user message.
func (s *Service) CreateConversation(ctx context.Context, title *string) (*Conversation, error) {
	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	conv := New(publicID, title)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	metrics.ConversationsCreatedTotal.Inc()
	return conv, nil
}

// GetConversation retrieves a conversation with its messages in insertion order.
func (s *Service) GetConversation(ctx context.Context, publicID string) (*Conversation, error) {
	if !idgen.ValidateIDFormat(publicID, "conv") {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", nil, "4f0c8a19-2d5e-4b6f-9a31-7c8e0d2f5b14")
	}

	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	return conv, nil
}

// ListConversations returns a page of conversations ordered by most recent
// activity descending, plus the total count.
func (s *Service) ListConversations(ctx context.Context, limit, offset int) ([]*Conversation, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return items, total, nil
}

// UpdateTitle sets the conversation title.
func (s *Service) UpdateTitle(ctx context.Context, publicID, title string) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title cannot be empty", nil, "8b2d4e6f-1a3c-4d5e-8f90-a1b2c3d4e5f6")
	}

	conv, err := s.GetConversation(ctx, publicID)
	if err != nil {
		return nil, err
	}

	conv.Title = &title
	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation")
	}
	return conv, nil
}

// ArchiveConversation marks a conversation as archived.
func (s *Service) ArchiveConversation(ctx context.Context, publicID string) (*Conversation, error) {
	conv, err := s.GetConversation(ctx, publicID)
	if err != nil {
		return nil, err
	}

	conv.Status = StatusArchived
	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to archive conversation")
	}
	return conv, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Service) DeleteConversation(ctx context.Context, publicID string) error {
	conv, err := s.GetConversation(ctx, publicID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

// ===============================================
// Message Operations
// ===============================================

// AppendMessage appends a message to the end of a conversation. Appends on the
// same conversation are serialized; the conversation's UpdatedAt advances.
func (s *Service) AppendMessage(ctx context.Context, conversationPublicID string, role Role, content string, metadata map[string]string) (*Message, error) {
	if !ValidRole(role) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid message role", nil, "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f")
	}
	if strings.TrimSpace(content) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message content cannot be empty", nil, "d2e3f4a5-b6c7-4d8e-9f0a-1b2c3d4e5f6a")
	}

	lock := s.lockFor(conversationPublicID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.GetConversation(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
	}

	count, err := s.repo.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count messages")
	}

	msg := &Message{
		PublicID:       publicID,
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		Metadata:       metadata,
		SequenceNumber: count,
	}

	if err := s.repo.AppendMessage(ctx, conv.ID, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}
	return msg, nil
}

// EditMessage replaces the content of an existing message. Timestamps and
// ordering are unaffected.
func (s *Service) EditMessage(ctx context.Context, conversationPublicID, messagePublicID, newContent string) (*Message, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message content cannot be empty", nil, "e3f4a5b6-c7d8-4e9f-0a1b-2c3d4e5f6a7b")
	}

	conv, err := s.GetConversation(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}

	msg := findMessage(conv, messagePublicID)
	if msg == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "message not found", nil, "f4a5b6c7-d8e9-4f0a-1b2c-3d4e5f6a7b8c")
	}

	msg.Content = newContent
	if err := s.repo.UpdateMessage(ctx, conv.ID, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update message")
	}
	return msg, nil
}

// DeleteMessage removes a single message from a conversation.
func (s *Service) DeleteMessage(ctx context.Context, conversationPublicID, messagePublicID string) error {
	conv, err := s.GetConversation(ctx, conversationPublicID)
	if err != nil {
		return err
	}

	msg := findMessage(conv, messagePublicID)
	if msg == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "message not found", nil, "a5b6c7d8-e9f0-4a1b-2c3d-4e5f6a7b8c9d")
	}

	if err := s.repo.DeleteMessage(ctx, conv.ID, msg.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete message")
	}
	return nil
}

// EnsureTitle derives and persists a title from the first user message when
// the conversation does not have one yet. Failures are returned so callers can
// log them, but the conversation is usable either way.
func (s *Service) EnsureTitle(ctx context.Context, conv *Conversation, firstUserText string) (*Conversation, error) {
	if conv == nil {
		return nil, nil
	}
	if conv.Title != nil && *conv.Title != "" {
		return conv, nil
	}

	title := stringutils.DeriveConversationTitle(firstUserText)
	conv.Title = &title
	if err := s.repo.Update(ctx, conv); err != nil {
		return conv, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist derived title")
	}
	return conv, nil
}

func findMessage(conv *Conversation, messagePublicID string) *Message {
	for i := range conv.Messages {
		if conv.Messages[i].PublicID == messagePublicID {
			return &conv.Messages[i]
		}
	}
	return nil
}
