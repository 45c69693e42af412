package dbschema

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
	database.RegisterSchemaForAutoMigrate(ConversationMessage{})
}

// Conversation represents the database schema for conversations
type Conversation struct {
	BaseModel
	PublicID string                `gorm:"type:varchar(50);uniqueIndex;not null"`
	Object   string                `gorm:"type:varchar(50);not null;default:'conversation'"`
	Title    *string               `gorm:"type:varchar(256)"`
	Status   conversation.Status   `gorm:"type:varchar(20);index;not null;default:'active'"`
	Messages []ConversationMessage `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// ConversationMessage represents the database schema for messages
type ConversationMessage struct {
	BaseModel
	ConversationID uint              `gorm:"index:idx_message_conversation_sequence;not null"`
	PublicID       string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	Role           conversation.Role `gorm:"type:varchar(20);not null"`
	Content        string            `gorm:"type:text;not null"`
	Metadata       JSONMap           `gorm:"type:jsonb"`
	SequenceNumber int               `gorm:"index:idx_message_conversation_sequence;not null"`
}

// JSONMap is a custom type for map[string]string stored as JSON
type JSONMap map[string]string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// NewSchemaConversation creates a database schema from a domain conversation
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID: c.PublicID,
		Object:   c.Object,
		Title:    c.Title,
		Status:   c.Status,
	}
}

// EtoD converts database schema to domain conversation (Entity to Domain)
func (c *Conversation) EtoD() *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:        c.ID,
		PublicID:  c.PublicID,
		Object:    c.Object,
		Title:     c.Title,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i := range c.Messages {
		conv.Messages = append(conv.Messages, *c.Messages[i].EtoD())
	}
	return conv
}

// NewSchemaConversationMessage creates a database schema from a domain message
func NewSchemaConversationMessage(m *conversation.Message) *ConversationMessage {
	return &ConversationMessage{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		ConversationID: m.ConversationID,
		PublicID:       m.PublicID,
		Role:           m.Role,
		Content:        m.Content,
		Metadata:       JSONMap(m.Metadata),
		SequenceNumber: m.SequenceNumber,
	}
}

// EtoD converts database schema to domain message (Entity to Domain)
func (m *ConversationMessage) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		PublicID:       m.PublicID,
		Role:           m.Role,
		Content:        m.Content,
		Metadata:       map[string]string(m.Metadata),
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
	}
}
