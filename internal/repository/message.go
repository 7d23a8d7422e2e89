package repository

import (
	"context"

	"chat-relay/internal/domain"
)

// MessageRepository exposes append-only persistence for conversation turns.
// There are deliberately no update or delete operations: history must stay
// replayable exactly as it was written.
type MessageRepository interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, userID int64, role domain.Role, content string) (*domain.Message, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Message, error)
}
