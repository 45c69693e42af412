package conversation

import (
	"context"
	"time"
)

// ===============================================
// Conversation Types
// ===============================================

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ValidRole reports whether r is one of the known message roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single entry in a conversation. Content is mutable only through
// an explicit edit; a message never exists with partial streaming text.
type Message struct {
	ID             uint              `json:"-"`
	PublicID       string            `json:"id"` // string ID like "msg_abc123"
	ConversationID uint              `json:"-"`
	Role           Role              `json:"role"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"` // opaque to the engine, passed through unchanged
	SequenceNumber int               `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Conversation owns an append-only ordered message sequence. UpdatedAt
// advances on every appended message and is always >= every message timestamp.
type Conversation struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"` // string ID like "conv_abc123"
	Object    string    `json:"object"`
	Title     *string   `json:"title,omitempty"`
	Status    Status    `json:"status"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LastActivity returns the timestamp conversations are listed by:
// UpdatedAt when set, CreatedAt otherwise.
func (c *Conversation) LastActivity() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// MessageCount returns the number of messages currently loaded.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// New creates a conversation entity with the given public ID and optional title.
func New(publicID string, title *string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		PublicID:  publicID,
		Object:    "conversation",
		Title:     title,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ===============================================
// Conversation Repository
// ===============================================

type Filter struct {
	ID       *uint
	PublicID *string
	Status   *Status
}

// Repository is the persistence contract for the conversation store. List
// results are ordered by most-recent-activity descending, with equal
// timestamps broken by public ID so repeated listings are stable.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	List(ctx context.Context, limit, offset int) ([]*Conversation, int64, error)
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id uint) error

	// AppendMessage persists msg at the end of the conversation's message
	// sequence and advances the conversation's UpdatedAt.
	AppendMessage(ctx context.Context, conversationID uint, msg *Message) error
	UpdateMessage(ctx context.Context, conversationID uint, msg *Message) error
	DeleteMessage(ctx context.Context, conversationID uint, messageID uint) error
	CountMessages(ctx context.Context, conversationID uint) (int, error)
}
