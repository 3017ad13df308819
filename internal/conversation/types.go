// Package conversation defines the message types consumed by the analysis
// pipeline and parses conversation transcripts from JSON or JSONL files.
package conversation

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsUser reports whether the message was written by the human participant.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Window returns the last n messages of the conversation.
// If n <= 0 or n exceeds the conversation length, all messages are returned.
func Window(messages []Message, n int) []Message {
	if n <= 0 || n >= len(messages) {
		return messages
	}
	return messages[len(messages)-n:]
}
