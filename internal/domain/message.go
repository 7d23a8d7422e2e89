package domain

import "time"

// Role identifies which side of a conversation produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single turn in a user's conversation. Messages are
// append-only: once written they are never updated or deleted.
type Message struct {
	ID        int64
	UserID    int64
	Role      Role
	Content   string
	CreatedAt time.Time
}
