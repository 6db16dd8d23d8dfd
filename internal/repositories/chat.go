package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumeai/internal/models"
)

type ChatRepository interface {
	Create(chat *models.Chat) error
	FindByID(id uuid.UUID) (*models.Chat, error)
	List() ([]models.Chat, error)
	AddMessages(chatID uuid.UUID, messages []models.ChatMessage) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Create implements ChatRepository. Messages attached to the chat are created
// in the same transaction.
func (r *chatRepository) Create(chat *models.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// FindByID implements ChatRepository.
func (r *chatRepository) FindByID(id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&chat).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("chat not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return &chat, nil
}

// List implements ChatRepository.
func (r *chatRepository) List() ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.Order("created_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// AddMessages implements ChatRepository.
func (r *chatRepository) AddMessages(chatID uuid.UUID, messages []models.ChatMessage) error {
	var count int64
	if err := r.db.Model(&models.Chat{}).Where("id = ?", chatID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check chat: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("chat not found")
	}

	for i := range messages {
		messages[i].ChatID = chatID
	}
	if err := r.db.Create(&messages).Error; err != nil {
		return fmt.Errorf("failed to add messages: %w", err)
	}
	return nil
}
