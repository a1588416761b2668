package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/validation"
)

// ConversationStore описывает хранилище чатов и сообщений.
type ConversationStore interface {
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Conversation, error)
	AddMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
}

// ConversationService управляет чатом проекта.
type ConversationService struct {
	store    ConversationStore
	notifier Notifier
}

func NewConversationService(store ConversationStore, notifier Notifier) *ConversationService {
	return &ConversationService{store: store, notifier: notifier}
}

// ProjectConversation возвращает чат проекта его участнику.
func (s *ConversationService) ProjectConversation(ctx context.Context, projectID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.store.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrConversationNotFound
	}
	if conv.ClientID != userID && conv.FreelancerID != userID {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}

// SendMessage отправляет сообщение в чат проекта от имени участника.
func (s *ConversationService) SendMessage(ctx context.Context, projectID, authorID uuid.UUID, content string) (*models.Message, error) {
	if err := validation.ValidateLength("сообщение", content, 1, validation.MaxMessageLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	conv, err := s.ProjectConversation(ctx, projectID, authorID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		AuthorType:     models.AuthorTypeUser,
		AuthorID:       &authorID,
		Content:        content,
	}
	if err := s.store.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	counterparty := conv.FreelancerID
	if authorID == conv.FreelancerID {
		counterparty = conv.ClientID
	}
	notifyAsync(s.notifier, counterparty, "message.created", msg)

	return msg, nil
}

// ListMessages возвращает сообщения чата проекта участнику.
func (s *ConversationService) ListMessages(ctx context.Context, projectID, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	conv, err := s.ProjectConversation(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListMessages(ctx, conv.ID, limit, offset)
}
