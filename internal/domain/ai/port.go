package ai

import "context"

// Chat roles understood by every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to a completion provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer port: submit a conversation, get the primary reply text back.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
