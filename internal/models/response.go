package models

import "github.com/attendai/attendai/internal/chat"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ConversationResponse carries the adapter's replies for one turn.
type ConversationResponse struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []chat.Message `json:"messages"`
}
