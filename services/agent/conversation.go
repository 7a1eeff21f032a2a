package agent

import "canvasassist/models"

const defaultMaxContextLength = 10

// Conversation is a bounded message buffer for a single chat session.
// Older messages fall off the front once the limit is reached. Trimming
// happens only at the start of a turn; messages appended mid-turn (the
// assistant tool-call message and its tool results) always survive until the
// turn's follow-up pass has run.
type Conversation struct {
	messages  []models.ChatMessage
	maxLength int
}

func NewConversation(maxLength int) *Conversation {
	if maxLength <= 0 {
		maxLength = defaultMaxContextLength
	}
	return &Conversation{maxLength: maxLength}
}

// NewConversationFromHistory seeds a conversation with previously stored
// messages, trimming to the context limit.
func NewConversationFromHistory(messages []models.ChatMessage, maxLength int) *Conversation {
	conv := NewConversation(maxLength)
	conv.messages = append(conv.messages, messages...)
	conv.trim()
	return conv
}

func (c *Conversation) Append(msg models.ChatMessage) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the current window so callers cannot
// mutate the buffer out from under the agent.
func (c *Conversation) Messages() []models.ChatMessage {
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

func (c *Conversation) Reset() {
	c.messages = nil
}

func (c *Conversation) trim() {
	if len(c.messages) > c.maxLength {
		c.messages = c.messages[len(c.messages)-c.maxLength:]
	}
	// A tool message must never lead the window: its assistant tool-call
	// message has been trimmed away, and providers reject the orphan.
	for len(c.messages) > 0 && c.messages[0].Role == "tool" {
		c.messages = c.messages[1:]
	}
}
