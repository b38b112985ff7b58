package service

import (
	"context"
	"fmt"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/store"
	"github.com/narahq/nara-chat/models"
)

type conversationService struct {
	conversations store.ConversationRepository
	messages      store.MessageRepository
	logger        *logger.Logger
}

// NewConversationService constructs a [ConversationService] over the
// conversation and message repositories.
func NewConversationService(conversations store.ConversationRepository, messages store.MessageRepository, log *logger.Logger) ConversationService {
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		logger:        log,
	}
}

func (s *conversationService) List(ctx context.Context, userID int64) ([]models.Conversation, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

func (s *conversationService) Create(ctx context.Context, userID int64, title string) (models.Conversation, error) {
	conversation, err := s.conversations.Create(ctx, userID, title)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	logger.FromContext(ctx).Info().Str("conversation_id", conversation.ID).Msg("conversation created")
	return conversation, nil
}

func (s *conversationService) Rename(ctx context.Context, userID int64, id, title string) error {
	if title == "" {
		return ErrTitleRequired
	}

	if err := s.conversations.Rename(ctx, userID, id, title); err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}
	return nil
}

func (s *conversationService) Delete(ctx context.Context, userID int64, id string) error {
	if err := s.conversations.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	logger.FromContext(ctx).Info().Str("conversation_id", id).Msg("conversation deleted")
	return nil
}

// Messages checks ownership through the conversation repository before
// touching the messages table.
func (s *conversationService) Messages(ctx context.Context, userID int64, id string) ([]models.Message, error) {
	if _, err := s.conversations.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *conversationService) SetFeedback(ctx context.Context, userID int64, messageID string, liked bool) error {
	if err := s.messages.SetFeedback(ctx, userID, messageID, liked); err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	return nil
}
