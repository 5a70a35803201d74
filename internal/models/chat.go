package models

import "time"

const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// ChatMessage is one entry of the session log. Clients echo the full log back
// on each chat call; "system" entries are informational only and never reach
// the provider.
type ChatMessage struct {
	Text       string    `json:"text"`
	Sender     string    `json:"sender"`
	ProducedAt time.Time `json:"timestamp,omitempty"`
}

const KindChatResponse = "chat-response"

// ChatTurnResult is the reply to a single chat request; it lives only in the
// in-memory session log.
type ChatTurnResult struct {
	Text       string    `json:"text"`
	ProducedAt time.Time `json:"timestamp"`
	Kind       string    `json:"type"`
}
