package models

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a session's append-only assistant chat log.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
