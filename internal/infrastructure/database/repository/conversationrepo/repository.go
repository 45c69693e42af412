package conversationrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database/dbschema"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database/transaction"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// ConversationGormRepository persists conversations and messages in postgres.
type ConversationGormRepository struct {
	db *transaction.Database
}

var _ conversation.Repository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *transaction.Database) conversation.Repository {
	return &ConversationGormRepository{db}
}

// Create implements conversation.Repository.
func (repo *ConversationGormRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	model := dbschema.NewSchemaConversation(conv)
	if err := repo.db.GetTx(ctx).WithContext(ctx).Create(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to create conversation")
	}
	conv.ID = model.ID
	conv.CreatedAt = model.CreatedAt
	conv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByPublicID implements conversation.Repository. Messages are loaded in
// insertion order.
func (repo *ConversationGormRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	var model dbschema.Conversation
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Where("public_id = ?", publicID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", err, "c8f2d4a6-1e3b-4c5d-9f07-2a4b6c8d0e12")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find conversation by public ID")
	}
	return model.EtoD(), nil
}

// List implements conversation.Repository. Results are ordered by most recent
// activity descending; messages are not loaded.
func (repo *ConversationGormRepository) List(ctx context.Context, limit, offset int) ([]*conversation.Conversation, int64, error) {
	tx := repo.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.Conversation{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to count conversations")
	}

	var models []dbschema.Conversation
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Order("updated_at DESC, public_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list conversations")
	}

	result := make([]*conversation.Conversation, 0, len(models))
	for i := range models {
		result = append(result, models[i].EtoD())
	}
	return result, total, nil
}

// Update implements conversation.Repository.
func (repo *ConversationGormRepository) Update(ctx context.Context, conv *conversation.Conversation) error {
	updates := map[string]any{
		"title":      conv.Title,
		"status":     conv.Status,
		"updated_at": time.Now().UTC(),
	}
	tx := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(updates)
	if tx.Error != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, tx.Error, "failed to update conversation")
	}
	if tx.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "d9a3e5b7-2f4c-4d6e-0a18-3b5c7d9e1f23")
	}
	conv.UpdatedAt = updates["updated_at"].(time.Time)
	return nil
}

// Delete implements conversation.Repository. Messages cascade.
func (repo *ConversationGormRepository) Delete(ctx context.Context, id uint) error {
	tx := repo.db.GetTx(ctx).WithContext(ctx).Delete(&dbschema.Conversation{}, id)
	if tx.Error != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, tx.Error, "failed to delete conversation")
	}
	if tx.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "e0b4f6c8-3a5d-4e7f-1b29-4c6d8e0f2a34")
	}
	return nil
}

// AppendMessage implements conversation.Repository. The message insert and the
// conversation activity bump commit together.
func (repo *ConversationGormRepository) AppendMessage(ctx context.Context, conversationID uint, msg *conversation.Message) error {
	return repo.db.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := repo.db.GetTx(txCtx)

		model := dbschema.NewSchemaConversationMessage(msg)
		model.ConversationID = conversationID
		if err := tx.Create(model).Error; err != nil {
			return platformerrors.AsError(txCtx, platformerrors.LayerRepository, err, "failed to append message")
		}

		err := tx.Model(&dbschema.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", model.CreatedAt).Error
		if err != nil {
			return platformerrors.AsError(txCtx, platformerrors.LayerRepository, err, "failed to bump conversation activity")
		}

		msg.ID = model.ID
		msg.ConversationID = conversationID
		msg.CreatedAt = model.CreatedAt
		return nil
	})
}

// UpdateMessage implements conversation.Repository.
func (repo *ConversationGormRepository) UpdateMessage(ctx context.Context, conversationID uint, msg *conversation.Message) error {
	tx := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.ConversationMessage{}).
		Where("id = ? AND conversation_id = ?", msg.ID, conversationID).
		Updates(map[string]any{
			"content":  msg.Content,
			"metadata": dbschema.JSONMap(msg.Metadata),
		})
	if tx.Error != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, tx.Error, "failed to update message")
	}
	if tx.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "message not found", nil, "f1c5a7d9-4b6e-4f8a-2c30-5d7e9f1a3b45")
	}
	return nil
}

// DeleteMessage implements conversation.Repository.
func (repo *ConversationGormRepository) DeleteMessage(ctx context.Context, conversationID uint, messageID uint) error {
	tx := repo.db.GetTx(ctx).WithContext(ctx).
		Where("id = ? AND conversation_id = ?", messageID, conversationID).
		Delete(&dbschema.ConversationMessage{})
	if tx.Error != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, tx.Error, "failed to delete message")
	}
	if tx.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "message not found", nil, "a2d6b8e0-5c7f-4a9b-3d41-6e8f0a2b4c56")
	}
	return nil
}

// CountMessages implements conversation.Repository.
func (repo *ConversationGormRepository) CountMessages(ctx context.Context, conversationID uint) (int, error) {
	var count int64
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.ConversationMessage{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to count messages")
	}
	return int(count), nil
}
