package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// MemoryRepository is an in-process Repository implementation used for tests
// and single-instance deployments without a database. It is safe for
// concurrent use.
type MemoryRepository struct {
	mu        sync.RWMutex
	byID      map[uint]*Conversation
	nextID    uint
	nextMsgID uint
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:      make(map[uint]*Conversation),
		nextID:    1,
		nextMsgID: 1,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, conv *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv.ID = r.nextID
	r.nextID++

	stored := cloneConversation(conv)
	r.byID[conv.ID] = stored
	return nil
}

func (r *MemoryRepository) FindByPublicID(ctx context.Context, publicID string) (*Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.byID {
		if stored.PublicID == publicID {
			return cloneConversation(stored), nil
		}
	}
	return nil, r.notFound(ctx, "conversation not found")
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int) ([]*Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Conversation, 0, len(r.byID))
	for _, stored := range r.byID {
		all = append(all, stored)
	}

	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].LastActivity(), all[j].LastActivity()
		if ti.Equal(tj) {
			return all[i].PublicID < all[j].PublicID
		}
		return ti.After(tj)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*Conversation{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	page := make([]*Conversation, 0, end-offset)
	for _, stored := range all[offset:end] {
		page = append(page, cloneConversation(stored))
	}
	return page, total, nil
}

func (r *MemoryRepository) Update(ctx context.Context, conv *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[conv.ID]
	if !ok {
		return r.notFound(ctx, "conversation not found")
	}

	stored.Title = conv.Title
	stored.Status = conv.Status
	stored.UpdatedAt = time.Now().UTC()
	conv.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return r.notFound(ctx, "conversation not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) AppendMessage(ctx context.Context, conversationID uint, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[conversationID]
	if !ok {
		return r.notFound(ctx, "conversation not found")
	}

	msg.ID = r.nextMsgID
	r.nextMsgID++
	msg.ConversationID = conversationID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	stored.Messages = append(stored.Messages, cloneMessage(msg))
	stored.UpdatedAt = msg.CreatedAt
	return nil
}

func (r *MemoryRepository) UpdateMessage(ctx context.Context, conversationID uint, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[conversationID]
	if !ok {
		return r.notFound(ctx, "conversation not found")
	}

	for i := range stored.Messages {
		if stored.Messages[i].ID == msg.ID {
			stored.Messages[i].Content = msg.Content
			stored.Messages[i].Metadata = copyMetadata(msg.Metadata)
			return nil
		}
	}
	return r.notFound(ctx, "message not found")
}

func (r *MemoryRepository) DeleteMessage(ctx context.Context, conversationID uint, messageID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[conversationID]
	if !ok {
		return r.notFound(ctx, "conversation not found")
	}

	for i := range stored.Messages {
		if stored.Messages[i].ID == messageID {
			stored.Messages = append(stored.Messages[:i], stored.Messages[i+1:]...)
			return nil
		}
	}
	return r.notFound(ctx, "message not found")
}

func (r *MemoryRepository) CountMessages(ctx context.Context, conversationID uint) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[conversationID]
	if !ok {
		return 0, r.notFound(ctx, "conversation not found")
	}
	return len(stored.Messages), nil
}

func (r *MemoryRepository) notFound(ctx context.Context, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, nil, "")
}

func cloneConversation(conv *Conversation) *Conversation {
	out := *conv
	if conv.Title != nil {
		title := *conv.Title
		out.Title = &title
	}
	out.Messages = make([]Message, len(conv.Messages))
	for i := range conv.Messages {
		out.Messages[i] = cloneMessage(&conv.Messages[i])
	}
	return &out
}

func cloneMessage(msg *Message) Message {
	out := *msg
	out.Metadata = copyMetadata(msg.Metadata)
	return out
}

func copyMetadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
