package models

import "time"

type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredMessage is a conversation message row. Position preserves history
// ordering; Payload holds the full ChatMessage as JSON so tool calls and
// tool results round-trip without a separate table.
type StoredMessage struct {
	ID             int       `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Position       int       `json:"position"`
	Role           string    `json:"role"`
	Payload        []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
