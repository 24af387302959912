package model

// Turn roles mirror the chat completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message of a conversation, in order of exchange.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of turns, oldest first.
type Conversation []Turn
