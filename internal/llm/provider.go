package llm

import "context"

// Message is one turn of prior context handed to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the chat-completion collaborator. Implementations must honor
// ctx cancellation and bound their own request timeouts.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
