package domain

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// titleMaxLength caps a chat title derived from its first user message.
const titleMaxLength = 35

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat is a titled, ordered sequence of messages persisted under a user's
// namespace. ID is assigned by the store on first write and fixed afterwards.
// Messages are append-only; only the whole chat can be deleted.
type Chat struct {
	ID        string
	Title     string
	Messages  []Message
	UpdatedAt time.Time
}

// DeriveTitle builds a chat title from the first user message. It is computed
// exactly once, on the chat's first write, and never recomputed.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > titleMaxLength {
		return string(runes[:titleMaxLength]) + "..."
	}
	return content
}
