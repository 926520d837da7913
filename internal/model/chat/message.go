package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Placeholder is the interim content shown for an assistant message until the
// first streamed token arrives.
const Placeholder = "processing..."

// Message is a single transcript entry. Assistant messages are mutated by the
// transcript reconciler while their stream is live and are frozen afterwards.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserMessage creates an immutable user turn.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// NewAssistantPlaceholder creates the pending assistant turn that a stream
// will fill in.
func NewAssistantPlaceholder() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   Placeholder,
		Sources:   []string{},
		CreatedAt: time.Now().UTC(),
	}
}
