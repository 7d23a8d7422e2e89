package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chat-relay/internal/domain"
	"chat-relay/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_user_created ON messages (user_id, created_at);
`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) Append(ctx context.Context, userID int64, role domain.Role, content string) (*domain.Message, error) {
	msg := &domain.Message{
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO messages (user_id, role, content, created_at)
VALUES (?, ?, ?, ?)`,
		msg.UserID,
		string(msg.Role),
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message last insert id: %w", err)
	}
	msg.ID = id
	return msg, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	// id breaks ties between equal timestamps, keeping per-user order total.
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, role, content, created_at
FROM messages
WHERE user_id = ?
ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		var role string
		if err := rows.Scan(&msg.ID, &msg.UserID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = domain.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
