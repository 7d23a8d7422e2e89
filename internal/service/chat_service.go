package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/domain"
	"chat-relay/internal/llm"
	"chat-relay/internal/repository"
)

// ErrEmptyMessage is returned when a send request carries no content.
var ErrEmptyMessage = errors.New("message content is required")

// ChatService orchestrates message persistence and reply generation.
type ChatService interface {
	History(ctx context.Context, userID int64) ([]domain.Message, error)
	Send(ctx context.Context, userID int64, content string) (string, error)
}

type chatService struct {
	messages  repository.MessageRepository
	generator llm.Client
	logger    *logrus.Logger
}

func NewChatService(messages repository.MessageRepository, generator llm.Client, logger *logrus.Logger) ChatService {
	return &chatService{
		messages:  messages,
		generator: generator,
		logger:    logger,
	}
}

// History returns the user's full conversation in creation order.
func (s *chatService) History(ctx context.Context, userID int64) ([]domain.Message, error) {
	return s.messages.ListByUser(ctx, userID)
}

// Send appends the user's message, feeds the updated history to the reply
// generator, and persists the assistant's answer. When generation fails the
// user message stays persisted and no assistant message is written; the
// error surfaces to the caller.
func (s *chatService) Send(ctx context.Context, userID int64, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}

	if _, err := s.messages.Append(ctx, userID, domain.RoleUser, content); err != nil {
		return "", err
	}

	history, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	reply, err := s.generator.GenerateReply(ctx, history)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("reply generation failed")
		return "", err
	}

	if _, err := s.messages.Append(ctx, userID, domain.RoleAssistant, reply); err != nil {
		return "", err
	}

	return reply, nil
}
