package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThreadKind separates chat threads from code-generation threads
type ThreadKind string

const (
	ThreadKindConversation ThreadKind = "conversation"
	ThreadKindCode         ThreadKind = "code"
)

// MessageRole is the author role of a single turn
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// Message is one immutable turn inside a thread. Position is the
// turn's zero-based slot within its thread; both turns of one exchange
// share a timestamp, so ordering goes by Position, never by CreatedAt.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	ThreadID  uuid.UUID   `json:"thread_id"`
	Role      MessageRole `json:"role"`
	Position  int         `json:"position"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Thread is an ordered, growable sequence of turns owned by one user.
// Turns are insertion-ordered; the thread itself mutates only by
// appending turns or being deleted as a whole.
type Thread struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      ThreadKind `json:"kind"`
	Title     string     `json:"title"`
	Messages  []Message  `json:"messages,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// threadTitleLimit caps derived thread titles
const threadTitleLimit = 50

// DeriveThreadTitle builds a thread title from the initiating user message:
// the first 50 characters followed by an ellipsis.
func DeriveThreadTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "New thread..."
	}
	runes := []rune(content)
	if len(runes) > threadTitleLimit {
		runes = runes[:threadTitleLimit]
	}
	return string(runes) + "..."
}

// FirstUserMessage returns the first turn authored by the user, if any
func FirstUserMessage(messages []Message) (Message, bool) {
	for _, m := range messages {
		if m.Role == MessageRoleUser {
			return m, true
		}
	}
	return Message{}, false
}
