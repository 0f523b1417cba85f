package dialogue

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced an utterance. Values are the wire names used by
// the chat endpoint.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "assistant"
	RoleSystem Role = "system"
)

// Utterance is one turn of spoken or typed content. It is never mutated after
// creation.
type Utterance struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUtterance stamps a new utterance with a fresh ID.
func NewUtterance(role Role, text string, at time.Time) Utterance {
	return Utterance{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		Timestamp: at,
	}
}

// Message is a role/content pair of the context handed to reply producers.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
