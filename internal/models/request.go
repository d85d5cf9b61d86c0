package models

import "strings"

// MaxMessageBytes bounds the body of POST .../messages.
const MaxMessageBytes = 64 << 10

// MessageRequest for POST /api/v1/conversations/{id}/messages
type MessageRequest struct {
	Content string `json:"content"`
}

// Normalize trims surrounding whitespace; an all-blank message becomes "".
func (r *MessageRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}
